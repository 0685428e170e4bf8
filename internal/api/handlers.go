// Package api exposes HTTP handlers for the scoring service.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"example.com/scoring/internal/auth"
	"example.com/scoring/internal/domain"
	"example.com/scoring/internal/engine"
	"example.com/scoring/internal/persistence"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/workouts", h.workouts)
	mux.HandleFunc("/v1/workouts/", h.workoutByID)
	mux.HandleFunc("/v1/completeness", h.completeness)
	mux.HandleFunc("/v1/completeness/radar", h.completenessRadar)
	mux.HandleFunc("/v1/completeness/", h.domainDetail)
	mux.HandleFunc("/v1/trends", h.trends)
	mux.HandleFunc("/v1/exports/csv", h.exportCSV)
	mux.HandleFunc("/v1/exports/json", h.exportJSON)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) workouts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.logWorkout(w, r)
	case http.MethodGet:
		h.listWorkouts(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) workoutByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/workouts/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing workout id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getWorkout(w, r, id)
	case http.MethodDelete:
		h.deleteWorkout(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func requireClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	return claims, true
}

func requireRead(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return nil, false
	}
	if !claims.HasScope(auth.ScopeWorkoutsRead) && !claims.HasScope(auth.ScopeWorkoutsWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope workouts:read required")
		return nil, false
	}
	return claims, true
}

func (h *Handler) logWorkout(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	if !claims.HasScope(auth.ScopeWorkoutsWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope workouts:write required")
		return
	}

	var req LogWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	result, err := h.service.LogWorkout(r.Context(), req.toInput(claims.Subject, r.Header.Get("Idempotency-Key")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	resp := LogWorkoutResponse{
		Workout:        toWorkoutView(*result.Workout),
		UpdatedDomains: make([]DomainScoreView, 0, len(result.UpdatedScores)),
		Replay:         result.Replay,
	}
	for _, score := range result.UpdatedScores {
		resp.UpdatedDomains = append(resp.UpdatedDomains, toDomainScoreView(score))
	}

	status := http.StatusCreated
	if result.Replay {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (h *Handler) getWorkout(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireRead(w, r)
	if !ok {
		return
	}

	workout, err := h.service.GetWorkout(r.Context(), claims.Subject, id)
	if err != nil {
		if errors.Is(err, domain.ErrWorkoutNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "workout not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toWorkoutView(*workout))
}

func (h *Handler) deleteWorkout(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	if !claims.HasScope(auth.ScopeWorkoutsWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope workouts:write required")
		return
	}

	if err := h.service.DeleteWorkout(r.Context(), claims.Subject, id); err != nil {
		if errors.Is(err, domain.ErrWorkoutNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "workout not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listWorkouts(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireRead(w, r)
	if !ok {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > 100 {
				parsed = 100
			}
			limit = parsed
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	filter := domain.ListFilter{WorkoutType: r.URL.Query().Get("workout_type")}
	filter.Start, err = parseTimeParam(r, "start")
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid start timestamp")
		return
	}
	filter.End, err = parseTimeParam(r, "end")
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid end timestamp")
		return
	}

	workouts, next, err := h.service.ListWorkouts(r.Context(), claims.Subject, filter, cursor, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]WorkoutView, 0, len(workouts))
	for _, workout := range workouts {
		items = append(items, toWorkoutView(workout))
	}

	resp := ListWorkoutsResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) completeness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireRead(w, r)
	if !ok {
		return
	}

	scores, err := h.service.Completeness(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	resp := CompletenessResponse{Domains: make([]DomainScoreView, 0, len(scores))}
	for _, score := range scores {
		resp.Domains = append(resp.Domains, toDomainScoreView(score))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) completenessRadar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireRead(w, r)
	if !ok {
		return
	}

	scores, err := h.service.Completeness(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	resp := RadarResponse{Points: make([]RadarDataPoint, 0, len(scores))}
	for _, score := range scores {
		point := RadarDataPoint{
			Domain:     string(score.Domain),
			Label:      engine.DomainLabel(score.Domain),
			Score:      score.Score,
			Confidence: string(score.Confidence),
			HasData:    score.SampleCount > 0,
		}
		resp.Points = append(resp.Points, point)
		if score.SampleCount > 0 && (resp.LastUpdated == nil || score.UpdatedAt.After(*resp.LastUpdated)) {
			updated := score.UpdatedAt
			resp.LastUpdated = &updated
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) domainDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	tag := strings.TrimPrefix(r.URL.Path, "/v1/completeness/")
	if tag == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing domain")
		return
	}

	claims, ok := requireRead(w, r)
	if !ok {
		return
	}

	detail, err := h.service.GetDomainDetail(r.Context(), claims.Subject, engine.DomainTag(tag))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidDomain) {
			writeError(w, http.StatusNotFound, "not_found", "unknown domain "+tag)
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	resp := DomainDetailResponse{
		Contributing: make([]ContributingWorkoutView, 0, len(detail.Contributing)),
	}
	if detail.Score != nil {
		view := toDomainScoreView(detail.Score)
		resp.Score = &view
	}
	for _, c := range detail.Contributing {
		resp.Contributing = append(resp.Contributing, ContributingWorkoutView{
			WorkoutID:   c.WorkoutID,
			PerformedAt: c.PerformedAt,
			MetricValue: c.MetricValue,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) trends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireRead(w, r)
	if !ok {
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = "30d"
	}

	trends, err := h.service.GetTrends(r.Context(), claims.Subject, period)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPeriod) {
			writeError(w, http.StatusBadRequest, "validation_failed", "period must be 7d, 30d, or 90d")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	resp := TrendsResponse{
		Period:        trends.Period,
		DensityPower:  toTrendMetricView(trends.DensityPower),
		Repeatability: toTrendMetricView(trends.Repeatability),
		TotalEWU:      toTrendMetricView(trends.TotalEWU),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireRead(w, r)
	if !ok {
		return
	}

	start, end, err := exportRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	body, err := h.service.ExportCSV(r.Context(), claims.Subject, start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="workouts.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (h *Handler) exportJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireRead(w, r)
	if !ok {
		return
	}

	start, end, err := exportRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	bundle, err := h.service.ExportJSON(r.Context(), claims.Subject, start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, bundle)
}

func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func exportRange(r *http.Request) (*time.Time, *time.Time, error) {
	start, err := parseTimeParam(r, "start")
	if err != nil {
		return nil, nil, errors.New("invalid start timestamp")
	}
	end, err := parseTimeParam(r, "end")
	if err != nil {
		return nil, nil, errors.New("invalid end timestamp")
	}
	return start, end, nil
}

// MovementRequest is one movement in a log request.
type MovementRequest struct {
	MovementType string   `json:"movement_type"`
	Reps         int      `json:"reps"`
	LoadLb       *float64 `json:"load_lb"`
	Calories     *int     `json:"calories"`
}

// SplitRequest is one recorded bout time in a log request.
type SplitRequest struct {
	RoundNumber int     `json:"round_number"`
	TimeSeconds float64 `json:"time_seconds"`
}

// LogWorkoutRequest is the payload for POST /v1/workouts.
type LogWorkoutRequest struct {
	Name             string            `json:"name"`
	TemplateType     string            `json:"template_type"`
	TotalTimeSeconds int               `json:"total_time_seconds"`
	RoundCount       int               `json:"round_count"`
	Notes            string            `json:"notes"`
	PerformedAt      time.Time         `json:"performed_at"`
	Movements        []MovementRequest `json:"movements"`
	Splits           []SplitRequest    `json:"splits"`
}

var knownTemplates = map[string]struct{}{
	string(engine.TemplateInterval):       {},
	string(engine.TemplateChipper):        {},
	string(engine.TemplateSprintTest):     {},
	string(engine.TemplateThreshold):      {},
	string(engine.TemplateEndurance):      {},
	string(engine.TemplateStrength):       {},
	string(engine.TemplateMonostructural): {},
	string(engine.TemplateCustom):         {},
}

// Validate ensures request correctness.
func (r LogWorkoutRequest) Validate() error {
	if r.TotalTimeSeconds <= 0 {
		return errors.New("total_time_seconds must be > 0")
	}
	if r.RoundCount < 0 {
		return errors.New("round_count must be >= 1")
	}
	if r.PerformedAt.IsZero() {
		return errors.New("performed_at is required")
	}
	if len(r.Movements) == 0 {
		return errors.New("at least one movement is required")
	}
	if r.TemplateType != "" {
		if _, ok := knownTemplates[r.TemplateType]; !ok {
			return fmt.Errorf("unknown template_type %q", r.TemplateType)
		}
	}
	for i, m := range r.Movements {
		if strings.TrimSpace(m.MovementType) == "" {
			return fmt.Errorf("movements[%d].movement_type is required", i)
		}
		if m.Reps < 0 {
			return fmt.Errorf("movements[%d].reps must be >= 0", i)
		}
		if m.LoadLb != nil && *m.LoadLb < 0 {
			return fmt.Errorf("movements[%d].load_lb must be >= 0", i)
		}
		if m.Calories != nil && *m.Calories < 0 {
			return fmt.Errorf("movements[%d].calories must be >= 0", i)
		}
	}
	for i, sp := range r.Splits {
		if sp.RoundNumber < 1 {
			return fmt.Errorf("splits[%d].round_number must be >= 1", i)
		}
		if sp.TimeSeconds <= 0 {
			return fmt.Errorf("splits[%d].time_seconds must be > 0", i)
		}
	}
	return nil
}

func (r LogWorkoutRequest) toInput(userID, idempotencyKey string) domain.LogWorkoutInput {
	roundCount := r.RoundCount
	if roundCount == 0 {
		roundCount = 1
	}

	input := domain.LogWorkoutInput{
		UserID:           userID,
		Name:             r.Name,
		TemplateType:     engine.TemplateType(r.TemplateType),
		TotalTimeSeconds: r.TotalTimeSeconds,
		RoundCount:       roundCount,
		Notes:            r.Notes,
		PerformedAt:      r.PerformedAt,
		IdempotencyKey:   idempotencyKey,
		Movements:        make([]domain.MovementInput, 0, len(r.Movements)),
		Splits:           make([]domain.SplitInput, 0, len(r.Splits)),
	}
	for i, m := range r.Movements {
		input.Movements = append(input.Movements, domain.MovementInput{
			Kind:       engine.MovementKind(m.MovementType),
			Reps:       m.Reps,
			LoadLb:     m.LoadLb,
			Calories:   m.Calories,
			OrderIndex: i,
		})
	}
	for _, sp := range r.Splits {
		input.Splits = append(input.Splits, domain.SplitInput{RoundNumber: sp.RoundNumber, TimeSeconds: sp.TimeSeconds})
	}
	return input
}

// MovementView exposes a stored movement.
type MovementView struct {
	MovementType string   `json:"movement_type"`
	Modality     string   `json:"modality"`
	Reps         int      `json:"reps"`
	LoadLb       *float64 `json:"load_lb,omitempty"`
	Calories     *int     `json:"calories,omitempty"`
	OrderIndex   int      `json:"order_index"`
}

// SplitView exposes a stored split.
type SplitView struct {
	RoundNumber int     `json:"round_number"`
	TimeSeconds float64 `json:"time_seconds"`
}

// MetricsView exposes a workout's computed metric row.
type MetricsView struct {
	TotalEWU                 float64   `json:"total_ewu"`
	DensityPowerMin          float64   `json:"density_power_min"`
	DensityPowerSec          float64   `json:"density_power_sec"`
	ActivePower              *float64  `json:"active_power,omitempty"`
	PerRoundPower            []float64 `json:"per_round_power,omitempty"`
	RepeatabilityDrift       *float64  `json:"repeatability_drift,omitempty"`
	RepeatabilitySpread      *float64  `json:"repeatability_spread,omitempty"`
	RepeatabilityConsistency *float64  `json:"repeatability_consistency,omitempty"`
	LiftEWU                  float64   `json:"lift_ewu"`
	MachineEWU               float64   `json:"machine_ewu"`
	GymnasticsEWU            float64   `json:"gymnastics_ewu"`
	LiftShare                float64   `json:"lift_share"`
	MachineShare             float64   `json:"machine_share"`
	GymnasticsShare          float64   `json:"gymnastics_share"`
	TotalActiveSeconds       *float64  `json:"total_active_seconds,omitempty"`
	RestSeconds              *float64  `json:"rest_seconds,omitempty"`
	ComputedAt               time.Time `json:"computed_at"`
}

// WorkoutView exposes full details about a workout.
type WorkoutView struct {
	WorkoutID        string         `json:"workout_id"`
	UserID           string         `json:"user_id"`
	Name             string         `json:"name"`
	WorkoutType      string         `json:"workout_type"`
	TypeConfidence   float64        `json:"type_confidence"`
	TypeReasoning    string         `json:"type_reasoning"`
	TemplateType     string         `json:"template_type,omitempty"`
	TotalTimeSeconds int            `json:"total_time_seconds"`
	RoundCount       int            `json:"round_count"`
	Notes            string         `json:"notes,omitempty"`
	PerformedAt      time.Time      `json:"performed_at"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	Movements        []MovementView `json:"movements"`
	Splits           []SplitView    `json:"splits"`
	Metrics          *MetricsView   `json:"metrics,omitempty"`
}

// DomainScoreView exposes a domain score.
type DomainScoreView struct {
	Domain          string     `json:"domain"`
	Label           string     `json:"label"`
	RawValue        *float64   `json:"raw_value,omitempty"`
	NormalizedScore *float64   `json:"normalized_score,omitempty"`
	Percentile      *float64   `json:"percentile,omitempty"`
	SampleCount     int        `json:"sample_count"`
	Confidence      string     `json:"confidence"`
	Provisional     bool       `json:"provisional"`
	SourceWorkoutID string     `json:"source_workout_id,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// LogWorkoutResponse describes the response body for workout creation.
type LogWorkoutResponse struct {
	Workout        WorkoutView       `json:"workout"`
	UpdatedDomains []DomainScoreView `json:"updated_domains"`
	Replay         bool              `json:"idempotent_replay"`
}

// ListWorkoutsResponse packages list results.
type ListWorkoutsResponse struct {
	Items      []WorkoutView `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// CompletenessResponse lists every domain score, no_data entries included.
type CompletenessResponse struct {
	Domains []DomainScoreView `json:"domains"`
}

// RadarDataPoint is one axis of the completeness radar chart.
type RadarDataPoint struct {
	Domain     string   `json:"domain"`
	Label      string   `json:"label"`
	Score      *float64 `json:"score"`
	Confidence string   `json:"confidence"`
	HasData    bool     `json:"has_data"`
}

// RadarResponse packages the radar chart data.
type RadarResponse struct {
	Points      []RadarDataPoint `json:"points"`
	LastUpdated *time.Time       `json:"last_updated,omitempty"`
}

// ContributingWorkoutView is one workout backing a domain score.
type ContributingWorkoutView struct {
	WorkoutID   string    `json:"workout_id"`
	PerformedAt time.Time `json:"performed_at"`
	MetricValue float64   `json:"metric_value"`
}

// DomainDetailResponse is the drill-down view for one domain.
type DomainDetailResponse struct {
	Score        *DomainScoreView          `json:"score"`
	Contributing []ContributingWorkoutView `json:"contributing_workouts"`
}

// TrendPointView is one dated observation in a trend series.
type TrendPointView struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// TrendMetricView is a trend series plus its summary statistic.
type TrendMetricView struct {
	Data    []TrendPointView `json:"data"`
	Average float64          `json:"average"`
	Sum     *float64         `json:"sum,omitempty"`
}

// TrendsResponse groups dashboard series for one period. A metric with no
// observations in the period is null.
type TrendsResponse struct {
	Period        string           `json:"period"`
	DensityPower  *TrendMetricView `json:"density_power"`
	Repeatability *TrendMetricView `json:"repeatability"`
	TotalEWU      *TrendMetricView `json:"total_ewu"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toWorkoutView(workout domain.Workout) WorkoutView {
	view := WorkoutView{
		WorkoutID:        workout.ID,
		UserID:           workout.UserID,
		Name:             workout.Name,
		WorkoutType:      string(workout.WorkoutType),
		TypeConfidence:   workout.TypeConfidence,
		TypeReasoning:    workout.TypeReasoning,
		TemplateType:     string(workout.TemplateType),
		TotalTimeSeconds: workout.TotalTimeSeconds,
		RoundCount:       workout.RoundCount,
		Notes:            workout.Notes,
		PerformedAt:      workout.PerformedAt,
		CreatedAt:        workout.CreatedAt,
		UpdatedAt:        workout.UpdatedAt,
		Movements:        make([]MovementView, 0, len(workout.Movements)),
		Splits:           make([]SplitView, 0, len(workout.Splits)),
	}

	for _, m := range workout.Movements {
		view.Movements = append(view.Movements, MovementView{
			MovementType: string(m.Kind),
			Modality:     string(m.Modality),
			Reps:         m.Reps,
			LoadLb:       m.LoadLb,
			Calories:     m.Calories,
			OrderIndex:   m.OrderIndex,
		})
	}
	for _, sp := range workout.Splits {
		view.Splits = append(view.Splits, SplitView{RoundNumber: sp.RoundNumber, TimeSeconds: sp.TimeSeconds})
	}
	if m := workout.Metrics; m != nil {
		view.Metrics = &MetricsView{
			TotalEWU:                 m.TotalEWU,
			DensityPowerMin:          m.DensityPowerMin,
			DensityPowerSec:          m.DensityPowerSec,
			ActivePower:              m.ActivePower,
			PerRoundPower:            m.PerRoundPower,
			RepeatabilityDrift:       m.RepeatabilityDrift,
			RepeatabilitySpread:      m.RepeatabilitySpread,
			RepeatabilityConsistency: m.RepeatabilityConsistency,
			LiftEWU:                  m.LiftEWU,
			MachineEWU:               m.MachineEWU,
			GymnasticsEWU:            m.GymnasticsEWU,
			LiftShare:                m.LiftShare,
			MachineShare:             m.MachineShare,
			GymnasticsShare:          m.GymnasticsShare,
			TotalActiveSeconds:       m.TotalActiveSeconds,
			RestSeconds:              m.RestSeconds,
			ComputedAt:               m.ComputedAt,
		}
	}
	return view
}

func toTrendMetricView(metric *domain.TrendMetric) *TrendMetricView {
	if metric == nil {
		return nil
	}
	view := &TrendMetricView{
		Data: make([]TrendPointView, 0, len(metric.Data)),
		Sum:  metric.Sum,
	}
	if metric.Average != nil {
		view.Average = *metric.Average
	}
	for _, p := range metric.Data {
		view.Data = append(view.Data, TrendPointView{Date: p.Date, Value: p.Value})
	}
	return view
}

func toDomainScoreView(score *engine.DomainScore) DomainScoreView {
	view := DomainScoreView{
		Domain:          string(score.Domain),
		Label:           engine.DomainLabel(score.Domain),
		NormalizedScore: score.Score,
		Percentile:      score.Percentile,
		SampleCount:     score.SampleCount,
		Confidence:      string(score.Confidence),
		Provisional:     score.Provisional,
		SourceWorkoutID: score.SourceWorkoutID,
	}
	if score.SampleCount > 0 {
		raw := score.RawValue
		view.RawValue = &raw
		updated := score.UpdatedAt
		view.UpdatedAt = &updated
	}
	return view
}
