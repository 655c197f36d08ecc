package commands

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/satjeet/ClinePythonDividis/internal/domain"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func parseID(kind, s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s %q", kind, s)
	}
	return id, nil
}

func (c *cli) modulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modules [id]",
		Short: "List modules, or show one module's progress",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			m := c.ws.Modules
			if err := m.FetchModules(cmd.Context()); err != nil {
				return failed(err, m.Err())
			}
			if len(args) == 1 {
				return c.showModule(cmd, args[0])
			}

			if c.asJSON {
				return c.printJSON(map[string]any{
					"modules":     m.Modules(),
					"next_module": m.NextModule(),
				})
			}
			tw := newTable(c.out)
			fmt.Fprintln(tw, "ID\tMÓDULO\tESTADO\tXP")
			for _, mod := range m.Modules() {
				fmt.Fprintf(tw, "%d\t%s %s\t%s\t%d\n", mod.ID, mod.Icon, mod.Name, mod.State, mod.XPRequired)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if next := m.NextModule(); next != nil {
				c.printf("Siguiente: %s (%d XP)\n", next.Name, next.XPRequired)
			}
			return nil
		},
	}
}

func (c *cli) showModule(cmd *cobra.Command, arg string) error {
	id, err := parseID("module id", arg)
	if err != nil {
		return err
	}
	m := c.ws.Modules
	mod, ok := m.SetCurrentModule(id)
	if !ok {
		return fmt.Errorf("module %d not found", id)
	}
	if err := m.FetchModuleDetail(cmd.Context(), id); err != nil {
		return failed(err, m.Err())
	}
	detail, _ := m.Detail(id)
	if c.asJSON {
		return c.printJSON(map[string]any{"module": mod, "detail": detail})
	}

	c.printf("%s %s\n%s\n", mod.Icon, mod.Name, mod.Description)
	c.printf("Estado: %s · %d XP · racha %d (máx. %d)\n",
		detail.Progress.State, detail.Progress.ExperiencePoints,
		detail.Streak.CurrentStreak, detail.Streak.LongestStreak)
	if len(detail.Missions) == 0 {
		return nil
	}
	tw := newTable(c.out)
	fmt.Fprintln(tw, "MISIÓN\tESTADO\tXP")
	for _, mp := range detail.Missions {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", mp.Mission.Title, mp.State, mp.Mission.XPReward)
	}
	return tw.Flush()
}

func (c *cli) unlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock [module-id]",
		Short: "Spend XP to unlock a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			id, err := parseID("module id", args[0])
			if err != nil {
				return err
			}
			m := c.ws.Modules
			if err := m.UnlockModule(cmd.Context(), id); err != nil {
				return failed(err, m.Err())
			}
			c.printf("Módulo desbloqueado\n")
			c.printf("%d misiones disponibles\n", len(m.AvailableMissions()))
			return nil
		},
	}
}

func (c *cli) missionsCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "missions",
		Short: "List missions of unlocked modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			m := c.ws.Modules
			if err := m.FetchModules(cmd.Context()); err != nil {
				return failed(err, m.Err())
			}
			if err := m.FetchMissions(cmd.Context()); err != nil {
				return failed(err, m.Err())
			}

			list := m.AvailableMissions()
			if all {
				list = m.Missions()
			}
			if c.asJSON {
				return c.printJSON(list)
			}
			tw := newTable(c.out)
			fmt.Fprintln(tw, "ID\tMISIÓN\tMÓDULO\tXP")
			for _, ms := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", ms.ID, ms.Title, ms.Module.Name, ms.XPReward)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include missions of locked modules")
	return cmd
}

func (c *cli) completeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete [mission-id]",
		Short: "Mark a mission as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			m := c.ws.Modules
			if err := m.CompleteMission(cmd.Context(), args[0]); err != nil {
				msg := m.Err()
				if msg == "" {
					msg = c.ws.Session.Err()
				}
				return failed(err, msg)
			}
			s := c.ws.Session
			c.printf("Misión completada. Nivel %d · %d XP\n", s.UserLevel(), s.UserXP())
			return nil
		},
	}
}

func (c *cli) progressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show the progression summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			m := c.ws.Modules
			if err := m.FetchOverview(cmd.Context()); err != nil {
				return failed(err, m.Err())
			}
			o := m.Overview()
			if c.asJSON {
				return c.printJSON(o)
			}
			printOverview(c.out, o)
			return nil
		},
	}
}

func printOverview(w io.Writer, o *domain.ProgressOverview) {
	fmt.Fprintf(w, "Nivel %d · %d XP\n", o.Level, o.TotalXP)
	fmt.Fprintf(w, "Módulos desbloqueados: %d\n", o.ModulesUnlocked)
	fmt.Fprintf(w, "Misiones completadas: %d\n", o.MissionsCompleted)
	fmt.Fprintf(w, "Logros: %d\n", o.AchievementsEarned)

	keys := make([]string, 0, len(o.CurrentStreaks))
	for k := range o.CurrentStreaks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  racha módulo %s: %d días\n", k, o.CurrentStreaks[k])
	}
}
