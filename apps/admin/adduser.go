package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/roster"
)

var roleNames = map[string]string{
	"admin":   roster.RoleAdmin,
	"teacher": roster.RoleTeacher,
	"student": roster.RoleStudent,
}

// addUser creates a roster.User and adds it to the given classroom, if any.
func (cli *commandLine) addUser(name, role, classroomID string) error {
	ctx := context.Background()
	name = core.CleanString(name)

	r, ok := roleNames[core.CleanString(role, true /* lower */)]
	if !ok {
		return fmt.Errorf("%q: unknown role", role)
	}
	if classroomID != "" {
		if _, err := cli.roster.GetClassroom(ctx, classroomID); err != nil {
			return err
		}
	}

	usr, err := cli.roster.CreateUser(ctx, roster.User{ID: uuid.New().String(), Name: name, Roles: []string{r}})
	if err != nil {
		return err
	}
	if classroomID != "" {
		if err = cli.roster.AddMember(ctx, classroomID, usr.ID); err != nil {
			return err
		}
	}
	fmt.Fprintf(cli.out, "user %s created: %s\n", usr.Name, usr.ID)
	return nil
}
