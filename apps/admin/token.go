package main

import (
	"fmt"

	"github.com/pkg/errors"

	echoapi "github.com/trezcool/markaz/apps/api/echo"
)

var errProdToken = errors.New("tokens are issued by the auth service in production")

// token prints a teacher token signed with the app secret, to call the API during development.
func (cli *commandLine) token(teacherID, uname, email string) error {
	if cli.conf.Env == "PROD" {
		return errProdToken
	}
	claims := echoapi.NewTeacherClaims(cli.conf, teacherID, uname, email)
	token, err := echoapi.GenerateToken(cli.conf, claims)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, token)
	return nil
}
