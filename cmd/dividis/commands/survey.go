package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satjeet/ClinePythonDividis/internal/domain"
)

func (c *cli) surveyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "survey",
		Short: "Show the wellness survey with your saved answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			s := c.ws.Survey
			ctx := cmd.Context()
			if err := s.LoadQuestions(ctx); err != nil {
				return failed(err, s.Err())
			}
			if err := s.LoadAnswers(ctx); err != nil {
				return failed(err, s.Err())
			}
			if err := s.LoadSession(ctx); err != nil {
				return failed(err, s.Err())
			}
			return c.printSurvey()
		},
	}
	cmd.AddCommand(c.surveyAnswerCmd())
	return cmd
}

func (c *cli) surveyAnswerCmd() *cobra.Command {
	var (
		set      []string
		step     int
		complete bool
	)
	cmd := &cobra.Command{
		Use:   "answer --set QUESTION=VALUE...",
		Short: "Save answers (0-100) and optionally move the survey forward",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			s := c.ws.Survey
			ctx := cmd.Context()
			if err := s.LoadQuestions(ctx); err != nil {
				return failed(err, s.Err())
			}

			areas := make(map[int]string)
			for _, q := range s.Questions() {
				areas[q.ID] = q.Area
			}
			answers := make([]domain.SurveyAnswer, 0, len(set))
			for _, kv := range set {
				a, err := parseAnswer(kv, areas)
				if err != nil {
					return err
				}
				s.SetAnswer(a)
				answers = append(answers, a)
			}

			if len(answers) > 0 {
				if err := s.SaveAnswers(ctx, answers); err != nil {
					return failed(err, s.Err())
				}
				c.printf("Respuestas guardadas\n")
			}

			if step > 0 || complete {
				if step == 0 {
					if err := s.LoadSession(ctx); err != nil {
						return failed(err, s.Err())
					}
					step = s.CurrentStep()
				}
				update := domain.SurveySessionUpdate{CurrentStep: step, IsCompleted: complete}
				if err := s.UpdateSession(ctx, update); err != nil {
					return failed(err, s.Err())
				}
			}
			return c.printSurvey()
		},
	}
	cmd.Flags().StringArrayVar(&set, "set", nil, "answer as QUESTION_ID=VALUE, repeatable")
	cmd.Flags().IntVar(&step, "step", 0, "save the current step")
	cmd.Flags().BoolVar(&complete, "complete", false, "mark the survey completed")
	return cmd
}

func parseAnswer(kv string, areas map[int]string) (domain.SurveyAnswer, error) {
	k, v, ok := strings.Cut(kv, "=")
	if !ok {
		return domain.SurveyAnswer{}, fmt.Errorf("answer %q must be QUESTION_ID=VALUE", kv)
	}
	qid, err := parseID("question id", k)
	if err != nil {
		return domain.SurveyAnswer{}, err
	}
	area, ok := areas[qid]
	if !ok {
		return domain.SurveyAnswer{}, fmt.Errorf("question %d not found", qid)
	}
	value, err := strconv.Atoi(v)
	if err != nil {
		return domain.SurveyAnswer{}, fmt.Errorf("answer value %q is not a number", v)
	}
	return domain.SurveyAnswer{QuestionID: qid, Area: area, Value: value}, nil
}

func (c *cli) printSurvey() error {
	view := c.ws.Survey.View()
	if c.asJSON {
		return c.printJSON(view)
	}

	answered := make(map[int]int, len(view.Answers))
	for _, a := range view.Answers {
		answered[a.QuestionID] = a.Value
	}
	tw := newTable(c.out)
	fmt.Fprintln(tw, "ID\tÁREA\tPREGUNTA\tRESPUESTA")
	for _, q := range view.Questions {
		ans := "-"
		if v, ok := answered[q.ID]; ok {
			ans = strconv.Itoa(v)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", q.ID, q.Area, q.Text, ans)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	status := "en curso"
	if view.IsCompleted {
		status = "completada"
	}
	c.printf("Paso %d · %s\n", view.CurrentStep, status)
	return nil
}
