package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/alama/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db     *sqlx.DB
	usrSvc user.ServiceInterface
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  createadmin -username USERNAME [-email EMAIL] - create a system admin")
	fmt.Println("  migrate COMMAND [args] - run DB migrations (see goose commands)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createAdminCmd := flag.NewFlagSet("createadmin", flag.ExitOnError)
	createAdminUname := createAdminCmd.String("username", "", "The admin's username. The password will be prompted next.")
	createAdminEmail := createAdminCmd.String("email", "", "The admin's email address.")

	switch args[1] {
	case "createadmin":
		if err := createAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createAdminUname == "" {
			createAdminCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			createAdminCmd.Usage()
			return errHelp
		}
		return cli.createAdmin(*createAdminUname, *createAdminEmail, string(pwd))
	case "migrate":
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}
