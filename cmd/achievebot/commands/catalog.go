package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MEKXH/achievebot/internal/achievement"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func NewCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show the achievement catalog",
		RunE:  runCatalog,
	}
	cmd.Flags().StringP("user", "u", "", "Only show achievements earned by this user")
	return cmd
}

func runCatalog(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	catalog, ledger, backend, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	user, _ := cmd.Flags().GetString("user")
	user = strings.TrimSpace(user)

	all := catalog.All(ctx)
	title := "Achievements"
	if user != "" {
		earned := make([]achievement.Achievement, 0)
		for _, name := range ledger.ListEarned(ctx, user) {
			a, err := catalog.FindByName(ctx, name)
			if err != nil {
				a = achievement.Achievement{Name: name}
			}
			earned = append(earned, a)
		}
		all = earned
		title = "Earned by " + user
	}

	renderCatalog(os.Stdout, title, all)
	return nil
}

func renderCatalog(w io.Writer, title string, items []achievement.Achievement) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No achievements.")
		return
	}

	var (
		headerStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#C9A227")).
				Padding(0, 1).
				MarginBottom(1)

		wName        = 24
		wDescription = 36
		wCriteria    = 30

		colHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#C9A227")).
				Bold(true).
				MarginRight(1)

		nameStyle = lipgloss.NewStyle().
				Bold(true).
				Width(wName).
				MarginRight(1)

		descriptionStyle = lipgloss.NewStyle().
					Width(wDescription).
					MarginRight(1)

		criteriaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Width(wCriteria).
				MarginRight(1)
	)

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s (%d)", title, len(items))))

	headers := lipgloss.JoinHorizontal(lipgloss.Top,
		colHeaderStyle.Width(wName).Render("NAME"),
		colHeaderStyle.Width(wDescription).Render("DESCRIPTION"),
		colHeaderStyle.Width(wCriteria).Render("CRITERIA"),
	)
	fmt.Fprintf(w, "  %s\n", headers)

	sepStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginRight(1)
	separator := lipgloss.JoinHorizontal(lipgloss.Top,
		sepStyle.Render(strings.Repeat("─", wName)),
		sepStyle.Render(strings.Repeat("─", wDescription)),
		sepStyle.Render(strings.Repeat("─", wCriteria)),
	)
	fmt.Fprintf(w, "  %s\n", separator)

	for _, a := range items {
		criteria := a.Criteria
		if criteria == "" {
			criteria = "-"
		}
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			nameStyle.Render(truncate(a.Name, wName)),
			descriptionStyle.Render(truncate(a.Description, wDescription)),
			criteriaStyle.Render(truncate(criteria, wCriteria)),
		)
		fmt.Fprintf(w, "  %s\n", row)
	}

	fmt.Fprintln(w)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
