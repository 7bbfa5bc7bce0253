package main

import (
	"context"
	"fmt"

	echoapi "github.com/trezcool/maendeleo/apps/api/echo"
)

// printToken prints a signed API token for the user.
func (cli *commandLine) printToken(userID string) error {
	usr, err := cli.roster.GetUser(context.Background(), userID)
	if err != nil {
		return err
	}
	token, err := echoapi.GenerateToken(echoapi.GetUserClaims(usr, cli.conf), cli.conf)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, token)
	return nil
}
