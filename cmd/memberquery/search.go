package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/davicafu/memberquery/internal/member/domain"
	sharedQuery "github.com/davicafu/memberquery/internal/shared/platform/query"
	"github.com/davicafu/memberquery/pkg/logger"
)

type searchFlags struct {
	username string
	teamName string
	ageGoe   int
	ageLoe   int
	offset   int
	limit    int
	sort     string
	desc     bool
	simple   bool
}

// cond solo incluye los filtros que el usuario ha pasado explícitamente.
func (f *searchFlags) cond(cmd *cobra.Command) domain.MemberSearchCond {
	var cond domain.MemberSearchCond
	if cmd.Flags().Changed("username") {
		cond.Username = &f.username
	}
	if cmd.Flags().Changed("team-name") {
		cond.TeamName = &f.teamName
	}
	if cmd.Flags().Changed("age-goe") {
		cond.AgeGoe = &f.ageGoe
	}
	if cmd.Flags().Changed("age-loe") {
		cond.AgeLoe = &f.ageLoe
	}
	return cond
}

func newSearchCmd(flags *globalFlags) *cobra.Command {
	sf := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run a paged member search and print the page as JSON",
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

			limit := sf.limit
			if !cmd.Flags().Changed("limit") {
				limit = cfg.DefaultPageSize
			}
			p := sharedQuery.OffsetPagination{Offset: sf.offset, Limit: limit}

			var sorts []sharedQuery.Sort
			if sf.sort != "" {
				sorts = append(sorts, sharedQuery.Sort{Field: sf.sort, Desc: sf.desc})
			}

			run := service.SearchPage
			if sf.simple {
				run = service.SearchPageSimple
			}
			page, err := run(cmd.Context(), sf.cond(cmd), p, sorts...)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(page)
		},
	}

	cmd.Flags().StringVar(&sf.username, "username", "", "exact username")
	cmd.Flags().StringVar(&sf.teamName, "team-name", "", "exact team name")
	cmd.Flags().IntVar(&sf.ageGoe, "age-goe", 0, "minimum age (inclusive)")
	cmd.Flags().IntVar(&sf.ageLoe, "age-loe", 0, "maximum age (inclusive)")
	cmd.Flags().IntVar(&sf.offset, "offset", 0, "page offset")
	cmd.Flags().IntVar(&sf.limit, "limit", 0, "page size (default DEFAULT_PAGE_SIZE)")
	cmd.Flags().StringVar(&sf.sort, "sort", "", "sort field (member_id, username, age, team_id, team_name)")
	cmd.Flags().BoolVar(&sf.desc, "desc", false, "descending sort")
	cmd.Flags().BoolVar(&sf.simple, "simple", false, "always run the count query")
	return cmd
}
