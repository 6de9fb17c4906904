package main

import (
	"context"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/user"
)

// createAdmin creates a system admin user; noop if the username is taken.
func (cli *commandLine) createAdmin(uname, email, pwd string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	if err := cli.usrSvc.CheckUniqueness(uname); err != nil {
		return err
	}
	_, err := cli.usrSvc.Create(ctx, user.NewUser{
		Username:      uname,
		Email:         email,
		Password:      pwd,
		IsSystemAdmin: true,
	})
	return err
}
