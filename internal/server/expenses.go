package server

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/homehub/internal/expenses"
	"github.com/Veraticus/homehub/internal/model"
)

type monthResponse struct {
	*expenses.MonthPayload
	OK bool `json:"ok"`
}

type expenseRuleView struct {
	EndDate           *string         `json:"end_date"`
	LastGeneratedDate *string         `json:"last_generated_date"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	DefaultQuantity   decimal.Decimal `json:"default_quantity"`
	Amount            decimal.Decimal `json:"amount"`
	Title             string          `json:"title"`
	Category          string          `json:"category"`
	Creator           string          `json:"creator"`
	Frequency         string          `json:"frequency"`
	MonthlyMode       string          `json:"monthly_mode"`
	StartDate         string          `json:"start_date"`
	ID                int64           `json:"id"`
}

func newExpenseRuleView(rule *model.ExpenseRule) expenseRuleView {
	return expenseRuleView{
		EndDate:           model.FormatOptionalDate(rule.EndDate),
		LastGeneratedDate: model.FormatOptionalDate(rule.LastGeneratedDate),
		UnitPrice:         rule.UnitPrice,
		DefaultQuantity:   rule.Quantity(),
		Amount:            rule.Amount(),
		Title:             rule.Title,
		Category:          rule.Category,
		Creator:           rule.Creator,
		Frequency:         rule.Frequency,
		MonthlyMode:       string(rule.MonthlyMode),
		StartDate:         model.FormatDate(rule.StartDate),
		ID:                rule.ID,
	}
}

type createExpenseRequest struct {
	Title     string     `json:"title"`
	Category  string     `json:"category"`
	Payer     string     `json:"payer"`
	Date      string     `json:"date"`
	UnitPrice flexString `json:"unit_price"`
	Quantity  flexString `json:"quantity"`
	Amount    flexString `json:"amount"`
}

type updateExpenseRequest struct {
	Title     *string     `json:"title"`
	Category  *string     `json:"category"`
	Date      *string     `json:"date"`
	UnitPrice *flexString `json:"unit_price"`
	Quantity  *flexString `json:"quantity"`
	Amount    *flexString `json:"amount"`
	User      string      `json:"user"`
}

type expenseRuleRequest struct {
	Title           string     `json:"title"`
	Category        string     `json:"category"`
	Creator         string     `json:"creator"`
	UnitPrice       flexString `json:"unit_price"`
	DefaultQuantity flexString `json:"default_quantity"`
	Frequency       string     `json:"frequency"`
	MonthlyMode     string     `json:"monthly_mode"`
	StartDate       string     `json:"start_date"`
	EndDate         string     `json:"end_date"`
}

type editExpenseRuleRequest struct {
	Title           *string     `json:"title"`
	Category        *string     `json:"category"`
	UnitPrice       *flexString `json:"unit_price"`
	DefaultQuantity *flexString `json:"default_quantity"`
	Frequency       *string     `json:"frequency"`
	MonthlyMode     *string     `json:"monthly_mode"`
	StartDate       *string     `json:"start_date"`
	EndDate         *string     `json:"end_date"`
	User            string      `json:"user"`
}

type settingsRequest struct {
	User       string `json:"user"`
	Currency   string `json:"currency"`
	Categories string `json:"categories"`
}

// sweep brings the ledger up to date before any expense request is served.
func (s *Server) sweep(w http.ResponseWriter, r *http.Request) bool {
	if _, err := s.expenses.MaterializeUpTo(r.Context(), s.today()); err != nil {
		s.writeError(w, r, err)
		return false
	}
	return true
}

// handleExpenseMonth serves the month view. A missing or out-of-range month
// means the current one.
func (s *Server) handleExpenseMonth(w http.ResponseWriter, r *http.Request) {
	if !s.sweep(w, r) {
		return
	}
	query := r.URL.Query()
	year, _ := strconv.Atoi(query.Get("year"))
	month, _ := strconv.Atoi(query.Get("month"))
	y, m := expenses.NormalizeMonth(year, month, s.today())

	payload, err := s.expenses.BuildMonthPayload(r.Context(), y, m)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, monthResponse{MonthPayload: payload, OK: true})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !s.sweep(w, r) {
		return
	}

	entry, err := s.expenses.CreateEntry(r.Context(), expenses.EntryInput{
		Title:     req.Title,
		Category:  req.Category,
		Payer:     actor(r, req.Payer),
		Date:      req.Date,
		UnitPrice: req.UnitPrice.String(),
		Quantity:  req.Quantity.String(),
		Amount:    req.Amount.String(),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "entry": expenses.NewEntryView(entry)})
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req updateExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !s.sweep(w, r) {
		return
	}

	entry, err := s.expenses.UpdateEntry(r.Context(), id, actor(r, req.User), expenses.EntryPatch{
		Title:     req.Title,
		Category:  req.Category,
		Date:      req.Date,
		UnitPrice: optionalString(req.UnitPrice),
		Quantity:  optionalString(req.Quantity),
		Amount:    optionalString(req.Amount),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "entry": expenses.NewEntryView(entry)})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req struct {
		User string `json:"user"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !s.sweep(w, r) {
		return
	}
	if err := s.expenses.DeleteEntry(r.Context(), id, actor(r, req.User)); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}

func (s *Server) handleListExpenseRules(w http.ResponseWriter, r *http.Request) {
	if !s.sweep(w, r) {
		return
	}
	rules, err := s.expenses.ListRules(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	views := make([]expenseRuleView, 0, len(rules))
	for i := range rules {
		views = append(views, newExpenseRuleView(&rules[i]))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "rules": views})
}

func (s *Server) handleCreateExpenseRule(w http.ResponseWriter, r *http.Request) {
	var req expenseRuleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !s.sweep(w, r) {
		return
	}

	rule, err := s.expenses.CreateRule(r.Context(), expenses.RuleInput{
		Title:           req.Title,
		Category:        req.Category,
		Creator:         actor(r, req.Creator),
		UnitPrice:       req.UnitPrice.String(),
		DefaultQuantity: req.DefaultQuantity.String(),
		Frequency:       req.Frequency,
		MonthlyMode:     req.MonthlyMode,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// Generate the new rule's rows so the response reflects them.
	if !s.sweep(w, r) {
		return
	}
	if rule, err = s.expenses.GetRule(r.Context(), rule.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "rule": newExpenseRuleView(rule)})
}

func (s *Server) handleEditExpenseRule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req editExpenseRuleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !s.sweep(w, r) {
		return
	}

	result, err := s.expenses.EditRule(r.Context(), id, actor(r, req.User), expenses.RulePatch{
		Title:           req.Title,
		Category:        req.Category,
		UnitPrice:       optionalString(req.UnitPrice),
		DefaultQuantity: optionalString(req.DefaultQuantity),
		Frequency:       req.Frequency,
		MonthlyMode:     req.MonthlyMode,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"rule":    newExpenseRuleView(result.Rule),
		"pruned":  result.Pruned,
		"updated": result.Updated,
	})
}

func (s *Server) handleDeleteExpenseRule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req struct {
		DeleteEntries flexString `json:"delete_entries"`
		User          string     `json:"user"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !s.sweep(w, r) {
		return
	}
	flag := req.DeleteEntries.String()
	if flag == "" {
		flag = r.URL.Query().Get("delete_entries")
	}

	removed, err := s.expenses.DeleteRule(r.Context(), id, actor(r, req.User), expenses.ParseFlag(flag))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id, "entries_removed": removed})
}

func (s *Server) handleExpenseSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.expenses.Settings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"settings": expenses.SettingsView{Currency: settings.Currency, Categories: settings.Categories},
	})
}

func (s *Server) handleUpdateExpenseSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	settings, err := s.expenses.UpdateSettings(r.Context(), actor(r, req.User), req.Currency, req.Categories)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"settings": expenses.SettingsView{Currency: settings.Currency, Categories: settings.Categories},
	})
}
