package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/student"
)

// assign creates or updates the student and puts it at the end of the teacher's list.
func (cli *commandLine) assign(teacherID string, s student.Student) error {
	if _, err := uuid.Parse(s.ID); err != nil {
		return errors.Wrapf(err, "student ID %q", s.ID)
	}
	s.DisplayName = core.CleanString(s.DisplayName)
	s.Phone = core.CleanString(s.Phone)

	if err := cli.assigner.Assign(context.Background(), teacherID, s); err != nil {
		return errors.Wrap(err, "assigning student")
	}
	fmt.Fprintf(cli.out, "student %s (%s) assigned to teacher %s\n", s.ID, s.DisplayName, teacherID)
	return nil
}
