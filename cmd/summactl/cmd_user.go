package main

import (
	"context"
	"fmt"

	"summarizer-session-be/internal/bootstrap"
	"summarizer-session-be/internal/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "register <name>",
			Short: "Register a user and print its id",
			Args:  cobra.ExactArgs(1),
			RunE: withContainer(func(ctx context.Context, c *bootstrap.Container, cmd *cobra.Command, args []string) error {
				user, err := c.UserService.Register(ctx, &dto.RegisterUserRequest{Name: args[0]})
				if err != nil {
					return err
				}
				if jsonOutput(cmd) {
					return printJSON(user)
				}
				color.Green("Registered %s", user.Name)
				fmt.Println(user.Id)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List registered users",
			Args:  cobra.NoArgs,
			RunE: withContainer(func(ctx context.Context, c *bootstrap.Container, cmd *cobra.Command, args []string) error {
				users, err := c.UserService.ListUsers(ctx)
				if err != nil {
					return err
				}
				if jsonOutput(cmd) {
					return printJSON(users)
				}
				if len(users) == 0 {
					color.Yellow("No users registered")
					return nil
				}
				for _, u := range users {
					fmt.Printf("%s  %-24s %s\n", u.Id, u.Name, u.CreatedAt.Format("2006-01-02 15:04"))
				}
				return nil
			}),
		},
	)

	return cmd
}
