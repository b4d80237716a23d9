package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davicafu/memberquery/internal/member/application"
	"github.com/davicafu/memberquery/pkg/logger"
)

// sampleMembers es el dataset de ejemplo: dos equipos con dos miembros cada uno.
var sampleMembers = []struct {
	username string
	age      int
	team     string
}{
	{"member1", 10, "teamA"},
	{"member2", 20, "teamA"},
	{"member3", 30, "teamB"},
	{"member4", 40, "teamB"},
}

func newSeedCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample teams and members",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}

			var cl closer
			defer cl.Close()
			service, err := buildService(cmd.Context(), cfg, logger.Logger(), &cl)
			if err != nil {
				return err
			}

			n, err := seed(cmd, service)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d members\n", n)
			return nil
		},
	}
}

func seed(cmd *cobra.Command, service *application.MemberQueryService) (int, error) {
	for i, s := range sampleMembers {
		team := s.team
		if _, err := service.Register(cmd.Context(), s.username, s.age, &team); err != nil {
			return i, fmt.Errorf("seed %s: %w", s.username, err)
		}
	}
	return len(sampleMembers), nil
}
