package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satjeet/ClinePythonDividis/internal/domain"
)

func (c *cli) habitsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habits",
		Short: "Track habits",
	}
	cmd.AddCommand(c.habitsListCmd(), c.habitsAddCmd(), c.habitsUpdateCmd())
	return cmd
}

func (c *cli) habitsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List habits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			h := c.ws.Habits
			if err := h.FetchHabits(cmd.Context()); err != nil {
				return failed(err, h.Err())
			}
			return c.printHabits(h.Habits())
		},
	}
}

func (c *cli) habitsAddCmd() *cobra.Command {
	var in domain.NewHabit
	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Create a habit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			in.Name = args[0]
			h := c.ws.Habits
			if err := h.CreateHabit(cmd.Context(), in); err != nil {
				return failed(err, h.Err())
			}
			c.printf("Hábito creado\n")
			return c.printHabits(h.Habits())
		},
	}
	cmd.Flags().StringVar(&in.Difficulty, "difficulty", "", "difficulty (e.g. facil, media, dificil)")
	cmd.Flags().StringVar(&in.SuggestedTime, "time", "", "suggested time of day")
	_ = cmd.MarkFlagRequired("difficulty")
	return cmd
}

func (c *cli) habitsUpdateCmd() *cobra.Command {
	var (
		name, difficulty, suggested, status string
		days, stars, level                  int
	)
	cmd := &cobra.Command{
		Use:   "update [habit-id]",
		Short: "Change fields of a habit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			id, err := parseID("habit id", args[0])
			if err != nil {
				return err
			}

			var in domain.HabitUpdate
			flags := cmd.Flags()
			if flags.Changed("name") {
				in.Name = &name
			}
			if flags.Changed("difficulty") {
				in.Difficulty = &difficulty
			}
			if flags.Changed("time") {
				in.SuggestedTime = &suggested
			}
			if flags.Changed("status") {
				in.Status = &status
			}
			if flags.Changed("days") {
				in.ActiveDays = &days
			}
			if flags.Changed("stars") {
				in.Stars = &stars
			}
			if flags.Changed("level") {
				in.Level = &level
			}

			h := c.ws.Habits
			if err := h.UpdateHabit(cmd.Context(), id, in); err != nil {
				return failed(err, h.Err())
			}
			c.printf("Hábito actualizado\n")
			return c.printHabits(h.Habits())
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "new name")
	f.StringVar(&difficulty, "difficulty", "", "new difficulty")
	f.StringVar(&suggested, "time", "", "new suggested time")
	f.StringVar(&status, "status", "", "new status")
	f.IntVar(&days, "days", 0, "active days")
	f.IntVar(&stars, "stars", 0, "stars")
	f.IntVar(&level, "level", 0, "level")
	return cmd
}

func (c *cli) printHabits(list []domain.Habit) error {
	if c.asJSON {
		return c.printJSON(list)
	}
	tw := newTable(c.out)
	fmt.Fprintln(tw, "ID\tHÁBITO\tDIFICULTAD\tHORARIO\tESTADO")
	for _, h := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", h.ID, h.Name, h.Difficulty, h.SuggestedTime, h.Status)
	}
	return tw.Flush()
}
