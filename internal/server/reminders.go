package server

import (
	"net/http"

	"github.com/Veraticus/homehub/internal/model"
	"github.com/Veraticus/homehub/internal/recurrence"
	"github.com/Veraticus/homehub/internal/reminders"
)

type listRemindersResponse struct {
	*reminders.ListResult
	OK bool `json:"ok"`
}

type recurringRequest struct {
	Interval  flexString `json:"interval"`
	Unit      string     `json:"unit"`
	Frequency string     `json:"frequency"`
	EndDate   string     `json:"end_date"`
}

type createReminderRequest struct {
	Recurring   *recurringRequest `json:"recurring"`
	RecurringID *int64            `json:"recurring_id"`
	Date        string            `json:"date"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Creator     string            `json:"creator"`
	Time        string            `json:"time"`
	Category    string            `json:"category"`
	Color       string            `json:"color"`
}

type updateReminderRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Category    *string `json:"category"`
	Color       *string `json:"color"`
	User        string  `json:"user"`
}

type updateRuleRequest struct {
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	Time        *string     `json:"time"`
	Category    *string     `json:"category"`
	Color       *string     `json:"color"`
	Unit        *string     `json:"unit"`
	StartDate   *string     `json:"start_date"`
	EndDate     *string     `json:"end_date"`
	Interval    *flexString `json:"interval"`
	User        string      `json:"user"`
}

type deleteRemindersRequest struct {
	Creator string       `json:"creator"`
	IDs     []flexString `json:"ids"`
}

// handleListReminders answers a window query. A missing or malformed date
// means today.
func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	ref := s.today()
	if d, err := model.ParseDate(query.Get("date")); err == nil {
		ref = d
	}

	result, err := s.reminders.List(r.Context(), recurrence.ParseScope(query.Get("scope")), ref)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, listRemindersResponse{ListResult: result, OK: true})
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	var req createReminderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	in := reminders.CreateInput{
		RecurringID: req.RecurringID,
		Title:       req.Title,
		Date:        req.Date,
		Description: req.Description,
		Creator:     req.Creator,
		Time:        req.Time,
		Category:    req.Category,
		Color:       req.Color,
	}
	if req.Recurring != nil {
		interval, err := req.Recurring.Interval.Int("interval")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		in.Recurring = &reminders.RecurrenceInput{
			Unit:      req.Recurring.Unit,
			Frequency: req.Recurring.Frequency,
			EndDate:   req.Recurring.EndDate,
			Interval:  interval,
		}
	}

	result, err := s.reminders.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if result.Rule != nil {
		s.writeJSON(w, http.StatusCreated, map[string]any{
			"ok":   true,
			"rule": reminders.Summarize(result.Rule),
		})
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "reminder": result.Reminder})
}

func (s *Server) handleUpdateReminder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req updateReminderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.reminders.Update(r.Context(), id, actor(r, req.User), reminders.Patch{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		Category:    req.Category,
		Color:       req.Color,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "reminder": updated})
}

func (s *Server) handleUpdateReminderRule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req updateRuleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	patch := reminders.RulePatch{
		Title:       req.Title,
		Description: req.Description,
		Time:        req.Time,
		Category:    req.Category,
		Color:       req.Color,
		Unit:        req.Unit,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if req.Interval != nil {
		interval, err := req.Interval.Int("interval")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		patch.Interval = &interval
	}

	rule, err := s.reminders.UpdateRule(r.Context(), id, actor(r, req.User), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "rule": reminders.Summarize(rule)})
}

func (s *Server) handleDeleteReminders(w http.ResponseWriter, r *http.Request) {
	var req deleteRemindersRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ids := make([]int64, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := raw.Int("ids")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		ids = append(ids, int64(id))
	}

	result, err := s.reminders.DeleteBulk(r.Context(), ids, actor(r, req.Creator))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"deleted": result.Deleted,
		"dates":   result.Dates,
	})
}

func (s *Server) handleDeleteReminderRule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req struct {
		Creator string `json:"creator"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	user := req.Creator
	if user == "" {
		user = r.URL.Query().Get("creator")
	}
	if err := s.reminders.DeleteRule(r.Context(), id, actor(r, user)); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}
