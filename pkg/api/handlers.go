package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/jakechorley/volunteer-hub/pkg/core/chat"
	"github.com/jakechorley/volunteer-hub/pkg/core/engagement"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/core/profile"
	"github.com/jakechorley/volunteer-hub/pkg/core/services"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := services.LoadDashboard(r.Context(), s.store, s.logger, sessionFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardView(s.now(), dashboard))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := services.GetStats(r.Context(), s.store, s.logger, sessionFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsView{CompletedTasks: stats.CompletedTasks, RegisteredEvents: stats.RegisteredEvents})
}

// handleBrowseEvents filters on the status, category, location, window, from and to
// query parameters. Repeated parameters and comma separated values are both accepted.
func (s *Server) handleBrowseEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := services.ApplyFilterDefaults(s.cfg, engagement.FilterInput{
		Statuses:   queryList(q["status"]),
		Categories: queryList(q["category"]),
		Locations:  queryList(q["location"]),
		Window:     q.Get("window"),
		From:       q.Get("from"),
		To:         q.Get("to"),
	})

	criteria, err := engagement.ParseFilterSet(input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	events, err := services.BrowseEvents(r.Context(), s.store, s.logger, sessionFrom(r.Context()), criteria)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventViews(s.now(), events, nil))
}

func queryList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var notifier services.Notifier
	if s.cfg.RegistrationEmails {
		notifier = s.notifier
	}

	reg, err := services.RegisterForEvent(r.Context(), s.store, notifier, s.logger, sessionFrom(r.Context()), eventID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRegistrationView(*reg))
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	reg, err := services.WithdrawRegistration(r.Context(), s.store, s.logger, sessionFrom(r.Context()), eventID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRegistrationView(*reg))
}

type feedbackRequest struct {
	Rating int    `json:"rating"`
	Text   string `json:"text"`
}

type feedbackResponse struct {
	registrationView
	Mode string `json:"mode"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req feedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	reg, mode, err := services.SubmitFeedback(r.Context(), s.store, s.logger, sessionFrom(r.Context()), eventID, req.Rating, req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feedbackResponse{registrationView: toRegistrationView(*reg), Mode: string(mode)})
}

type eventTasksResponse struct {
	Claimable []claimableTaskView `json:"claimable"`
	Mine      []taskView          `json:"mine"`
	Taken     int                 `json:"taken"`
}

func (s *Server) handleEventTasks(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	tasks, err := services.LoadEventTasks(r.Context(), s.store, s.logger, sessionFrom(r.Context()), eventID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eventTasksResponse{
		Claimable: toClaimableViews(tasks.Claimable),
		Mine:      toTaskViews(tasks.Mine),
		Taken:     tasks.Taken,
	})
}

type claimRequest struct {
	TaskIDs []int64 `json:"taskIds"`
}

type claimResponse struct {
	Claimed []int64  `json:"claimed"`
	Errors  []string `json:"errors,omitempty"`
}

// handleClaimTasks answers 200 when at least one task was claimed, listing any failures
func (s *Server) handleClaimTasks(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	claimed, err := services.ClaimTasks(r.Context(), s.store, s.logger, sessionFrom(r.Context()), req.TaskIDs)
	if err != nil && len(claimed) == 0 {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, claimResponse{Claimed: claimed, Errors: errorMessages(err)})
}

type taskChangeRequest struct {
	TaskID   int64   `json:"taskId"`
	Status   *string `json:"status,omitempty"`
	Feedback *string `json:"feedback,omitempty"`
}

type submitTasksRequest struct {
	Changes []taskChangeRequest `json:"changes"`
}

type submitTasksResponse struct {
	Committed []int64 `json:"committed"`
}

func (s *Server) handleSubmitTasks(w http.ResponseWriter, r *http.Request) {
	var req submitTasksRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	changes := make([]services.TaskChange, 0, len(req.Changes))
	for _, c := range req.Changes {
		change := services.TaskChange{TaskID: c.TaskID, Feedback: c.Feedback}
		if c.Status != nil {
			status, err := engagement.ParseTaskStatus(*c.Status)
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			change.Status = &status
		}
		changes = append(changes, change)
	}

	committed, err := services.SubmitTaskChanges(r.Context(), s.store, s.logger, sessionFrom(r.Context()), changes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, submitTasksResponse{Committed: committed})
}

func (s *Server) handleReleaseTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := idParam(r, "taskID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	confirmed := r.URL.Query().Get("confirm") == "true"

	if err := services.ReleaseTask(r.Context(), s.store, s.logger, sessionFrom(r.Context()), taskID, confirmed); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	timeline, err := services.LoadChat(r.Context(), s.store, s.logger, sessionFrom(r.Context()), eventID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toChatMessageViews(timeline.Messages()))
}

type chatRequest struct {
	Body string `json:"body"`
}

func (s *Server) handleSendChat(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	timeline := chat.NewTimeline(eventID, nil)
	msg, err := services.SendChatMessage(r.Context(), s.store, s.logger, sessionFrom(r.Context()), timeline, req.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toChatMessageView(msg))
}

type availabilityRequest struct {
	Start          string   `json:"startDate"`
	End            string   `json:"endDate,omitempty"`
	TimePreference string   `json:"timePreference"`
	Days           []string `json:"days"`
}

func (req availabilityRequest) toModel() (model.Availability, error) {
	start, err := time.Parse(dateLayout, strings.TrimSpace(req.Start))
	if err != nil {
		return model.Availability{}, engagement.Invalid("startDate", "invalid date %q, expected YYYY-MM-DD", req.Start)
	}
	a := model.Availability{Start: start, TimePreference: req.TimePreference, Days: req.Days}
	if strings.TrimSpace(req.End) != "" {
		end, err := time.Parse(dateLayout, strings.TrimSpace(req.End))
		if err != nil {
			return model.Availability{}, engagement.Invalid("endDate", "invalid date %q, expected YYYY-MM-DD", req.End)
		}
		a.End = &end
	}
	return a, nil
}

func (s *Server) handleOnboardingDetails(w http.ResponseWriter, r *http.Request) {
	var details profile.Details
	if err := decodeJSON(w, r, &details); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondVolunteer(w, r)(services.CompleteOnboardingStep1(r.Context(), s.store, s.logger, sessionFrom(r.Context()), details))
}

func (s *Server) handleOnboardingPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs profile.WorkPreferences
	if err := decodeJSON(w, r, &prefs); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondVolunteer(w, r)(services.CompleteOnboardingStep2(r.Context(), s.store, s.logger, sessionFrom(r.Context()), prefs))
}

func (s *Server) handleOnboardingAvailability(w http.ResponseWriter, r *http.Request) {
	availability, ok := s.decodeAvailability(w, r)
	if !ok {
		return
	}
	s.respondVolunteer(w, r)(services.CompleteOnboardingStep3(r.Context(), s.store, s.logger, sessionFrom(r.Context()), availability))
}

func (s *Server) handleUpdateAvailability(w http.ResponseWriter, r *http.Request) {
	availability, ok := s.decodeAvailability(w, r)
	if !ok {
		return
	}
	s.respondVolunteer(w, r)(services.UpdateAvailability(r.Context(), s.store, s.logger, sessionFrom(r.Context()), availability))
}

func (s *Server) decodeAvailability(w http.ResponseWriter, r *http.Request) (model.Availability, bool) {
	var req availabilityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return model.Availability{}, false
	}
	availability, err := req.toModel()
	if err != nil {
		s.writeError(w, r, err)
		return model.Availability{}, false
	}
	return availability, true
}

func (s *Server) respondVolunteer(w http.ResponseWriter, r *http.Request) func(*model.Volunteer, error) {
	return func(volunteer *model.Volunteer, err error) {
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toVolunteerView(*volunteer, nil))
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := services.BuildHistory(r.Context(), s.store, s.logger, sessionFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryView(history))
}

func (s *Server) handleExportHistory(w http.ResponseWriter, r *http.Request) {
	if s.publisher == nil || s.cfg.HistorySheetID == "" {
		writeJSON(w, http.StatusNotImplemented, errorResponse{Error: "history export is not configured"})
		return
	}

	history, err := services.ExportHistory(r.Context(), s.store, s.publisher, s.cfg, s.logger, sessionFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryView(history))
}
