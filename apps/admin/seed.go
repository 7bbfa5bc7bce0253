package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/roster"
	"github.com/trezcool/maendeleo/core/term"
)

// seed creates a demo classroom: a teacher, two students, a subject
// and a term of the given number of weeks starting on the current week's Monday.
func (cli *commandLine) seed(weeks int) error {
	ctx := context.Background()
	now := time.Now().UTC()

	cls, err := cli.roster.CreateClassroom(ctx, roster.Classroom{ID: uuid.New().String(), Name: "Demo Classroom"})
	if err != nil {
		return err
	}
	subj, err := cli.roster.CreateSubject(ctx, roster.Subject{ID: uuid.New().String(), ClassroomID: cls.ID, Name: "Reading"})
	if err != nil {
		return err
	}

	users := []roster.User{
		{ID: uuid.New().String(), Name: "Demo Teacher", Roles: []string{roster.RoleTeacher}},
		{ID: uuid.New().String(), Name: "Demo Student 1", Roles: []string{roster.RoleStudent}},
		{ID: uuid.New().String(), Name: "Demo Student 2", Roles: []string{roster.RoleStudent}},
	}
	for i, usr := range users {
		if users[i], err = cli.roster.CreateUser(ctx, usr); err != nil {
			return err
		}
		if err = cli.roster.AddMember(ctx, cls.ID, usr.ID); err != nil {
			return err
		}
	}

	monday := core.DateOf(now).AddDays(-((int(now.Weekday()) + 6) % 7))
	t, err := cli.terms.Create(ctx, term.NewTerm{
		ClassroomID: cls.ID,
		Start:       monday,
		End:         monday.AddDays(7*weeks - 1),
		AllowedDays: term.SchoolDays,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "classroom: %s\n", cls.ID)
	fmt.Fprintf(cli.out, "subject:   %s\n", subj.ID)
	fmt.Fprintf(cli.out, "term:      %s (%s - %s)\n", t.ID, t.Start, t.End)
	for _, usr := range users {
		fmt.Fprintf(cli.out, "user:      %s (%s)\n", usr.ID, usr.Name)
	}
	return nil
}
