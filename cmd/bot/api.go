package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nutrisnap/nutrisnap/pkg/calendar"
	"github.com/nutrisnap/nutrisnap/pkg/logger"
	"github.com/nutrisnap/nutrisnap/pkg/photostore"
	"github.com/nutrisnap/nutrisnap/pkg/vision"
	"github.com/nutrisnap/nutrisnap/svc/analysis"
	"github.com/nutrisnap/nutrisnap/svc/entitlement"
	"github.com/nutrisnap/nutrisnap/svc/goals"
	"github.com/nutrisnap/nutrisnap/svc/metering"
	"github.com/nutrisnap/nutrisnap/svc/payment"
	"github.com/nutrisnap/nutrisnap/svc/subscription"
)

// maxPhotoBytes caps uploaded photo size at 10 MiB, matching the chat
// platform's photo limit.
const maxPhotoBytes = 10 << 20

// api is the HTTP surface consumed by the chat transport. Handlers are
// thin: decode, delegate, encode. All gating and quota decisions live
// in the services.
type api struct {
	ledger   *subscription.Ledger
	gate     *entitlement.Gate
	meter    *metering.Meter
	payments *payment.Service
	paddle   *payment.PaddleProvider
	goals    *goals.Service
	analysis *analysis.Service
	vision   *vision.Client
	calendar *calendar.Service
	photos   photostore.Store
	log      *slog.Logger
}

func (a *api) routes(r chi.Router) {
	r.Route("/v1/users/{userID}", func(r chi.Router) {
		r.Get("/subscription", a.getSubscription)
		r.Post("/trial", a.activateTrial)
		r.Post("/checkout", a.createCheckout)
		r.Post("/invoices/stars", a.createStarsInvoice)
		r.Get("/receipts", a.listReceipts)

		r.Post("/analyses", a.analyzePhoto)
		r.Post("/analyses/confirm", a.confirmAnalysis)
		r.Patch("/analyses/draft", a.updateDraft)
		r.Delete("/analyses/draft", a.discardDraft)
		r.Get("/today", a.todayTotals)
		r.Get("/history", a.history)
		r.Get("/photo", a.getPhoto)

		r.Put("/goal", a.setGoal)
		r.Get("/goal", a.getGoal)
		r.Get("/goal/progress", a.goalProgress)

		r.Get("/calendar/url", a.calendarAuthURL)
		r.Post("/calendar", a.connectCalendar)
		r.Delete("/calendar", a.disconnectCalendar)
	})
}

func (a *api) getSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}

	rec, err := a.ledger.GetRecord(r.Context(), userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	used, limit, bonus, err := a.meter.Usage(r.Context(), userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	plan := a.gate.Table().PlanFor(rec.Tier)

	respond(w, http.StatusOK, map[string]any{
		"tier":       rec.Tier,
		"status":     rec.Status,
		"expiry":     rec.Expiry,
		"trial_used": rec.TrialUsed,
		"usage": map[string]any{
			"used_today":  used,
			"daily_limit": limit,
			"bonus_units": bonus,
		},
		"features": plan.Features,
	})
}

func (a *api) activateTrial(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}
	if err := a.ledger.ActivateTrial(r.Context(), userID); err != nil {
		a.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"activated": true})
}

func (a *api) createCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}
	var req struct {
		DurationMonths int    `json:"duration_months"`
		PriceID        string `json:"price_id"`
	}
	if !decode(w, r, &req) {
		return
	}

	link, err := a.paddle.CreateCheckoutLink(r.Context(), userID, req.DurationMonths, req.PriceID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	qr, err := a.payments.PaymentLinkQR(link, 256)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"checkout_url": link,
		"qr_png":       base64.StdEncoding.EncodeToString(qr),
	})
}

func (a *api) createStarsInvoice(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}
	var req struct {
		Product string `json:"product"`
	}
	if !decode(w, r, &req) {
		return
	}

	inv, err := a.payments.CreateStarsInvoice(userID, payment.Product(req.Product))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"title":       inv.Title,
		"description": inv.Description,
		"payload":     inv.Payload,
		"amount":      inv.Amount,
		"currency":    inv.Currency,
	})
}

func (a *api) listReceipts(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	receipts, err := a.payments.Receipts(r.Context(), userID, limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"receipts": receipts})
}

// analyzePhoto runs the gated photo pipeline: quota check, photo
// upload, vision call, draft store. Quota is committed only after the
// vision call succeeded, so a failed analysis costs nothing.
func (a *api) analyzePhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}

	multiDish := r.URL.Query().Get("multi") == "1"
	weight, _ := strconv.Atoi(r.URL.Query().Get("weight"))

	if multiDish {
		decision, err := a.gate.CheckFeature(r.Context(), userID, entitlement.FeatureMultiSubject)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		if !decision.Allowed {
			respond(w, http.StatusForbidden, map[string]any{"reason": decision.Reason})
			return
		}
	}

	decision, err := a.gate.CheckAndReserveQuota(r.Context(), userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if !decision.Allowed {
		respond(w, http.StatusTooManyRequests, map[string]any{"reason": decision.Reason})
		return
	}

	image, err := io.ReadAll(io.LimitReader(r.Body, maxPhotoBytes))
	if err != nil || len(image) == 0 {
		respond(w, http.StatusBadRequest, map[string]any{"error": "photo body is required"})
		return
	}
	mimeType := r.Header.Get("Content-Type")

	photoKey, err := a.photos.Put(r.Context(), userID, image, mimeType)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	text, err := a.vision.AnalyzeFood(r.Context(), vision.AnalyzeRequest{
		Image:       image,
		MimeType:    mimeType,
		WeightGrams: weight,
		MultiDish:   multiDish,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}

	if err := a.analysis.StoreDraft(r.Context(), userID, analysis.Draft{
		Text:     text,
		PhotoKey: photoKey,
		WeightG:  weight,
	}); err != nil {
		a.fail(w, r, err)
		return
	}

	if err := a.meter.RecordConsumption(r.Context(), userID); err != nil {
		// The analysis already succeeded; log and serve the result.
		a.log.ErrorContext(r.Context(), "quota commit failed",
			logger.UserID(userID), logger.Error(err))
	}

	respond(w, http.StatusOK, map[string]any{
		"text":      text,
		"photo_key": photoKey,
	})
}

// confirmAnalysis turns the pending draft into a stored diary entry and
// syncs it to the user's calendar when connected and entitled.
func (a *api) confirmAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}

	draft, err := a.analysis.LastDraft(r.Context(), userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	calories, proteins, fats, carbs, vitamins := analysis.ParseNutrition(draft.Text)
	entry, err := a.analysis.SaveEntry(r.Context(), analysis.Entry{
		UserID:    userID,
		DishName:  analysis.ParseDishName(draft.Text),
		WeightG:   draft.WeightG,
		Calories:  calories,
		ProteinsG: proteins,
		FatsG:     fats,
		CarbsG:    carbs,
		Vitamins:  vitamins,
		RawText:   draft.Text,
		PhotoKey:  draft.PhotoKey,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.analysis.DiscardDraft(r.Context(), userID); err != nil {
		a.log.WarnContext(r.Context(), "draft discard failed",
			logger.UserID(userID), logger.Error(err))
	}

	synced := false
	if a.calendar.Connected(r.Context(), userID) {
		decision, err := a.gate.CheckFeature(r.Context(), userID, entitlement.FeatureCalendarSync)
		if err == nil && decision.Allowed {
			if err := a.calendar.CreateMealEvent(r.Context(), userID, entry.DishName); err != nil {
				a.log.WarnContext(r.Context(), "calendar sync failed",
					logger.UserID(userID), logger.Error(err))
			} else {
				synced = true
			}
		}
	}

	respond(w, http.StatusCreated, map[string]any{
		"dish_name":       entry.DishName,
		"calories":        entry.Calories,
		"proteins_g":      entry.ProteinsG,
		"fats_g":          entry.FatsG,
		"carbs_g":         entry.CarbsG,
		"vitamins":        entry.Vitamins,
		"calendar_synced": synced,
	})
}

func (a *api) updateDraft(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := a.analysis.UpdateDraft(r.Context(), userID, req.Text); err != nil {
		a.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"updated": true})
}

func (a *api) discardDraft(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}
	if err := a.analysis.DiscardDraft(r.Context(), userID); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) todayTotals(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}

	totals, count, err := a.analysis.TodayTotals(r.Context(), userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	resp := map[string]any{
		"calories":   totals.Calories,
		"proteins_g": totals.ProteinsG,
		"fats_g":     totals.FatsG,
		"carbs_g":    totals.CarbsG,
		"vitamins":   totals.Vitamins,
		"entries":    count,
	}

	// Smart tips ride along when the user has a goal and the tier
	// includes them.
	if goal, err := a.goals.GetGoal(r.Context(), userID); err == nil {
		decision, gerr := a.gate.CheckFeature(r.Context(), userID, entitlement.FeatureSmartTips)
		if gerr == nil && decision.Allowed {
			resp["recommendations"] = a.goals.Recommendations(r.Context(), goal, goals.DayNutrition{
				Calories:  totals.Calories,
				ProteinsG: totals.ProteinsG,
				FatsG:     totals.FatsG,
				CarbsG:    totals.CarbsG,
			})
		}
	}

	respond(w, http.StatusOK, resp)
}

// history serves the diary within the tier's retention window.
func (a *api) history(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}

	rec, err := a.ledger.GetRecord(r.Context(), userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	plan := a.gate.Table().PlanFor(rec.Tier)

	entries, err := a.analysis.History(r.Context(), userID, plan.HistoryRetentionDays)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	items := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		items = append(items, map[string]any{
			"date":       e.Date,
			"timestamp":  e.Timestamp,
			"dish_name":  e.DishName,
			"calories":   e.Calories,
			"proteins_g": e.ProteinsG,
			"fats_g":     e.FatsG,
			"carbs_g":    e.CarbsG,
		})
	}
	respond(w, http.StatusOK, map[string]any{
		"retention_days": plan.HistoryRetentionDays,
		"entries":        items,
	})
}

func (a *api) getPhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}

	// A foreign user's key is simply not found.
	key := r.URL.Query().Get("key")
	if !photostore.OwnedBy(key, userID) {
		respond(w, http.StatusNotFound, map[string]any{"error": "photo not found"})
		return
	}
	data, err := a.photos.Get(r.Context(), key)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	_, _ = w.Write(data)
}

func (a *api) setGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}
	var req struct {
		GoalType      string  `json:"goal_type"`
		TargetWeight  float64 `json:"target_weight"`
		CurrentWeight float64 `json:"current_weight"`
		Height        float64 `json:"height"`
		Age           int     `json:"age"`
		ActivityLevel string  `json:"activity_level"`
	}
	if !decode(w, r, &req) {
		return
	}

	goal, err := a.goals.SetGoal(r.Context(), userID, goals.Profile{
		GoalType:      goals.GoalType(req.GoalType),
		TargetWeight:  req.TargetWeight,
		CurrentWeight: req.CurrentWeight,
		Height:        req.Height,
		Age:           req.Age,
		ActivityLevel: goals.ActivityLevel(req.ActivityLevel),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, goalResponse(goal))
}

func (a *api) getGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}
	goal, err := a.goals.GetGoal(r.Context(), userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, goalResponse(goal))
}

func (a *api) goalProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days < 1 {
		days = 7
	}

	goal, err := a.goals.GetGoal(r.Context(), userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	totals, count, err := a.analysis.PeriodTotals(r.Context(), userID, days)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	progress := goals.ProgressFor(goal, goals.DayNutrition{
		Calories:  totals.Calories,
		ProteinsG: totals.ProteinsG,
		FatsG:     totals.FatsG,
		CarbsG:    totals.CarbsG,
	}, days, count)

	respond(w, http.StatusOK, map[string]any{
		"days":             progress.PeriodDays,
		"analyses":         progress.AnalysesCount,
		"avg_calories":     progress.AvgCalories,
		"avg_proteins_g":   progress.AvgProteinsG,
		"avg_fats_g":       progress.AvgFatsG,
		"avg_carbs_g":      progress.AvgCarbsG,
		"target_calories":  progress.CalorieTarget,
		"accuracy_percent": progress.CalorieAccuracy,
	})
}

func (a *api) calendarAuthURL(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}

	decision, err := a.gate.CheckFeature(r.Context(), userID, entitlement.FeatureCalendarSync)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if !decision.Allowed {
		respond(w, http.StatusForbidden, map[string]any{"reason": decision.Reason})
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		state = strconv.FormatInt(userID, 10)
	}
	respond(w, http.StatusOK, map[string]any{"url": a.calendar.AuthURL(state)})
}

func (a *api) connectCalendar(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}
	var req struct {
		Code string `json:"code"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := a.calendar.Connect(r.Context(), userID, req.Code); err != nil {
		a.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"connected": true})
}

func (a *api) disconnectCalendar(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}
	if err := a.calendar.Disconnect(r.Context(), userID); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || id <= 0 {
		respond(w, http.StatusBadRequest, map[string]any{"error": "invalid user ID"})
		return 0, false
	}
	return id, true
}

// fail maps service errors to HTTP statuses. Unmapped errors become
// opaque 500s; the detail goes to the log, not the client.
func (a *api) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, subscription.ErrTrialAlreadyUsed):
		status, message = http.StatusConflict, "trial already used"
	case errors.Is(err, payment.ErrUnknownProduct),
		errors.Is(err, payment.ErrUnknownPlan):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, goals.ErrNotSet):
		status, message = http.StatusNotFound, "goal is not set"
	case errors.Is(err, goals.ErrInvalidProfile):
		status, message = http.StatusUnprocessableEntity, "invalid goal profile"
	case errors.Is(err, analysis.ErrNoDraft):
		status, message = http.StatusNotFound, "no pending analysis"
	case errors.Is(err, analysis.ErrEmptyEntry):
		status, message = http.StatusUnprocessableEntity, "analysis produced no nutrition data"
	case errors.Is(err, photostore.ErrNotFound):
		status, message = http.StatusNotFound, "photo not found"
	case errors.Is(err, calendar.ErrNotConnected):
		status, message = http.StatusConflict, "calendar is not connected"
	case errors.Is(err, calendar.ErrInvalidCode):
		status, message = http.StatusBadRequest, "invalid authorization code"
	case errors.Is(err, vision.ErrRateLimitExceeded):
		status, message = http.StatusTooManyRequests, "analysis service is busy, try again shortly"
	}

	if status == http.StatusInternalServerError {
		a.log.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path), logger.Error(err))
	}
	respond(w, status, map[string]any{"error": message})
}

func goalResponse(g goals.Goal) map[string]any {
	macros := goals.Macros(g.GoalType, g.DailyCalories)
	return map[string]any{
		"goal_type":      g.GoalType,
		"daily_calories": g.DailyCalories,
		"activity_level": g.ActivityLevel,
		"macro_targets": map[string]any{
			"proteins_g": macros.ProteinsG,
			"fats_g":     macros.FatsG,
			"carbs_g":    macros.CarbsG,
		},
		"set_at":  g.SetAt,
		"updated": g.UpdatedAt,
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respond(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
		return false
	}
	return true
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
