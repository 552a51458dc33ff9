package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/subscription-tracker/internal/apiclient"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/tracker"
)

const requestTimeout = 15 * time.Second

type options struct {
	apiURL string
	token  string
	now    func() time.Time
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{now: time.Now}

	root := &cobra.Command{
		Use:           "subtracker",
		Short:         "Учет подписок из командной строки",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&opts.apiURL, "api", envOr("SUBTRACKER_API", "http://localhost:8080/api/v1"), "адрес REST API")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("SUBTRACKER_TOKEN"), "JWT-токен, по умолчанию из SUBTRACKER_TOKEN")

	root.AddCommand(
		newLoginCmd(opts),
		newListCmd(opts),
		newStatsCmd(opts),
		newUpcomingCmd(opts),
	)
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (o *options) client() (*apiclient.Client, error) {
	if o.token == "" {
		return nil, errors.New("token is required: run `subtracker login` and export SUBTRACKER_TOKEN")
	}
	return apiclient.NewClient(o.apiURL, apiclient.WithToken(o.token)), nil
}

// records загружает все подписки пользователя без серверной фильтрации.
func (o *options) records(ctx context.Context) ([]models.Subscription, error) {
	c, err := o.client()
	if err != nil {
		return nil, err
	}
	return c.ListSubscriptions(ctx, models.Criteria{})
}

func newLoginCmd(opts *options) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Получить токен доступа",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			res, err := apiclient.NewClient(opts.apiURL).Login(ctx, username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (%s)\nexport SUBTRACKER_TOKEN=%s\n", res.Username, res.Role, res.Token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "имя пользователя")
	cmd.Flags().StringVarP(&password, "password", "p", "", "пароль")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newListCmd(opts *options) *cobra.Command {
	var criteria models.Criteria

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Список подписок с поиском, фильтрами и сортировкой",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			records, err := opts.records(ctx)
			if err != nil {
				return err
			}
			now := opts.now()
			rows := tracker.Apply(records, criteria, now)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SERVICE\tCATEGORY\tCOST\tCYCLE\tMONTHLY\tNEXT PAYMENT\tSTATUS")
			for _, s := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					s.ServiceName,
					tracker.CategoryOrDefault(s.Category),
					s.Cost.StringFixed(2),
					s.BillingCycle,
					tracker.MonthlyEquivalent(s.Cost, s.BillingCycle).StringFixed(2),
					formatDate(s.NextPaymentDate),
					tracker.StatusBucket(s.Status),
				)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d subscriptions\n", len(rows), len(records))
			return nil
		},
	}
	cmd.Flags().StringVarP(&criteria.Search, "search", "s", "", "подстрока в названии, описании или категории")
	cmd.Flags().StringVar(&criteria.Category, "category", models.FilterAll, "категория")
	cmd.Flags().StringVar(&criteria.Recurring, "recurring", models.FilterAll, "true, false, past-due или all")
	cmd.Flags().StringVar(&criteria.Status, "status", models.FilterAll, "active, cancelled, expired или all")
	cmd.Flags().StringVar(&criteria.Sort, "sort", models.SortName, "name, cost-high, cost-low, next-payment, newest")
	return cmd
}

func newStatsCmd(opts *options) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Сводка по подпискам",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			st, err := opts.stats(ctx, remote)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Total\t%d\n", st.Total)
			fmt.Fprintf(w, "Active\t%d\n", st.Active)
			fmt.Fprintf(w, "Recurring\t%d\n", st.Recurring)
			fmt.Fprintf(w, "Overdue\t%d\n", st.Overdue)
			fmt.Fprintf(w, "Monthly spend\t%s\n", st.MonthlySpend.StringFixed(2))
			fmt.Fprintf(w, "Annual cost\t%s\n", st.AnnualCost.StringFixed(2))
			fmt.Fprintf(w, "Due today\t%d\n", st.DueToday)
			fmt.Fprintf(w, "Due this week\t%d\n", st.DueThisWeek)
			fmt.Fprintf(w, "Due this month\t%d\n", st.DueThisMonth)
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "взять сводку, посчитанную сервером")
	return cmd
}

func (o *options) stats(ctx context.Context, remote bool) (models.Stats, error) {
	if remote {
		c, err := o.client()
		if err != nil {
			return models.Stats{}, err
		}
		return c.Stats(ctx)
	}
	records, err := o.records(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	return tracker.Summarize(records, o.now()), nil
}

func newUpcomingCmd(opts *options) *cobra.Command {
	var (
		days     int
		filter   models.PaymentFilter
		remote   bool
		asCSV    bool
		currency string
	)

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "Ближайшие и просроченные платежи",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			report, err := opts.upcoming(ctx, remote, days, filter)
			if err != nil {
				return err
			}
			if asCSV {
				return tracker.WritePaymentsCSV(cmd.OutOrStdout(), report.Payments, currency)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DUE\tDAYS\tSERVICE\tAMOUNT\tURGENCY")
			for _, p := range report.Payments {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
					formatDate(p.DueDate), p.DaysUntil, p.ServiceName, p.Amount.StringFixed(2), p.Urgency)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "outstanding %s (overdue %d, due soon %d, upcoming %d)\n",
				report.Outstanding.StringFixed(2), report.Overdue, report.DueSoon, report.Upcoming)
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 30, "горизонт в днях, отрицательное значение снимает ограничение")
	cmd.Flags().StringVar(&filter.Amount, "amount", models.FilterAll, "low (< 10), medium (10-50), high (> 50) или all")
	cmd.Flags().StringVar(&filter.Urgency, "urgency", models.FilterAll, "overdue, due-soon, upcoming или all")
	cmd.Flags().BoolVar(&remote, "remote", false, "взять платежи, отобранные сервером")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "вывести платежи в CSV")
	cmd.Flags().StringVar(&currency, "currency", "USD", "валюта для колонки Currency в CSV")
	return cmd
}

func (o *options) upcoming(ctx context.Context, remote bool, days int, filter models.PaymentFilter) (models.UpcomingReport, error) {
	if remote {
		c, err := o.client()
		if err != nil {
			return models.UpcomingReport{}, err
		}
		return c.Upcoming(ctx, days, filter)
	}
	records, err := o.records(ctx)
	if err != nil {
		return models.UpcomingReport{}, err
	}
	return tracker.UpcomingReport(records, o.now(), days, filter), nil
}

func formatDate(d models.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.Format(models.DateLayout)
}
