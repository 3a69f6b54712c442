package sheetsclient

import (
	"fmt"
	"strings"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

const (
	historyDateLayout  = "Mon Jan 02 2006"
	maxSheetTitleRunes = 100
)

var historyHeader = []interface{}{"Date", "Event", "Category", "Status", "Rating", "Feedback", "Tasks"}

// PublishHistory writes a volunteer's history to its own tab
// The tab is titled "<volunteer> - <export date>". If the tab already exists its
// contents are cleared and rewritten, so exporting twice on one day is idempotent.
func (c *Client) PublishHistory(spreadsheetID string, history *model.History) error {
	tabTitle := historyTabTitle(history)

	exists, err := c.SheetExists(spreadsheetID, tabTitle)
	if err != nil {
		return err
	}

	if exists {
		if err := c.ClearValues(spreadsheetID, quoteSheetTitle(tabTitle)); err != nil {
			return fmt.Errorf("failed to clear existing tab: %w", err)
		}
	} else {
		if _, err := c.CreateSheet(spreadsheetID, tabTitle); err != nil {
			return fmt.Errorf("failed to create tab: %w", err)
		}
	}

	if err := c.UpdateValues(spreadsheetID, quoteSheetTitle(tabTitle)+"!A1", historyValues(history)); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}

	return nil
}

// historyTabTitle builds a tab title the Sheets API accepts
func historyTabTitle(history *model.History) string {
	name := strings.TrimSpace(history.VolunteerName)
	if name == "" {
		name = "Volunteer"
	}
	// Sheets rejects these characters in tab titles
	name = strings.NewReplacer("[", "(", "]", ")", "*", "", "?", "", "/", "-", "\\", "-", ":", "-").Replace(name)

	title := fmt.Sprintf("%s - %s", name, history.ExportedAt.Format("2006-01-02"))
	if runes := []rune(title); len(runes) > maxSheetTitleRunes {
		title = string(runes[:maxSheetTitleRunes])
	}
	return title
}

func quoteSheetTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// historyValues lays out the tab: a title row, a blank row, then the header and one row per event
func historyValues(history *model.History) [][]interface{} {
	values := [][]interface{}{
		{fmt.Sprintf("Volunteer history for %s", history.VolunteerName), fmt.Sprintf("Exported %s", history.ExportedAt.Format(historyDateLayout))},
		{},
		historyHeader,
	}

	for _, row := range history.Rows {
		rating := ""
		if row.Rating > 0 {
			rating = fmt.Sprintf("%d", row.Rating)
		}

		tasks := make([]string, 0, len(row.Tasks))
		for _, task := range row.Tasks {
			tasks = append(tasks, fmt.Sprintf("%s (%s)", task.Description, task.Status))
		}

		values = append(values, []interface{}{
			row.Start.Format(historyDateLayout),
			row.EventTitle,
			string(row.Category),
			string(row.Status),
			rating,
			row.Feedback,
			strings.Join(tasks, "; "),
		})
	}

	return values
}
