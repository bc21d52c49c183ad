package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dealdesk/dealdesk/pkg/access"
	"github.com/dealdesk/dealdesk/pkg/audit"
	"github.com/dealdesk/dealdesk/pkg/grid"
	"github.com/dealdesk/dealdesk/pkg/icsfeed"
	"github.com/dealdesk/dealdesk/pkg/meetlink"
	"github.com/dealdesk/dealdesk/pkg/schedule"
	"github.com/dealdesk/dealdesk/pkg/store"
)

type server struct {
	store   *store.Store
	gate    *access.Gate
	audit   *audit.Recorder
	links   *meetlink.Client
	logger  *slog.Logger
	limiter *rateLimiter
}

func (s *server) routes() {
	http.HandleFunc("/api/v1/meetings", s.rateLimit(s.handleMeetings))
	http.HandleFunc("/api/v1/meetings/", s.rateLimit(s.handleMeetingByID))
	http.HandleFunc("/api/v1/meetings/batch-delete", s.rateLimit(s.handleBatchDelete))
	http.HandleFunc("/api/v1/slots", s.rateLimit(s.handleSlots))
	http.HandleFunc("/api/v1/calendar/day", s.rateLimit(s.handleCalendarDay))
	http.HandleFunc("/api/v1/access", s.rateLimit(s.handleAccess))
	http.HandleFunc("/api/v1/zones", s.rateLimit(s.handleZones))
	http.HandleFunc("/calendar.ics", s.handleICSFeed)
	http.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// role extracts the caller's role. Authentication itself is handled by the
// session layer in front of this service; the role header is what it passes
// through.
func role(r *http.Request) access.Role {
	return access.Role(r.Header.Get("X-Role"))
}

func actor(r *http.Request) string {
	if a := r.Header.Get("X-User"); a != "" {
		return a
	}
	return "anonymous"
}

// meetingRequest is the scheduling form payload. Date and time are the
// user's wall-clock selections; Timezone names the zone they are understood
// in.
type meetingRequest struct {
	Subject         string   `json:"subject"`
	Description     *string  `json:"description"`
	Date            string   `json:"date"` // 2006-01-02
	Time            string   `json:"time"` // HH:MM
	Timezone        string   `json:"timezone"`
	DurationMinutes int      `json:"duration_minutes"`
	LeadID          *string  `json:"lead_id"`
	ContactID       *string  `json:"contact_id"`
	Attendees       []string `json:"attendees"`
	CreateJoinLink  bool     `json:"create_join_link"`
}

// resolve turns the form selections into a validated UTC instant pair.
func (mr *meetingRequest) resolve() (start, end time.Time, err error) {
	if mr.DurationMinutes != schedule.DurationShort && mr.DurationMinutes != schedule.DurationLong {
		return time.Time{}, time.Time{}, fmt.Errorf("duration must be %d or %d minutes", schedule.DurationShort, schedule.DurationLong)
	}
	if _, ok := schedule.ZoneByName(mr.Timezone); !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("unknown timezone %q", mr.Timezone)
	}
	date, err := time.Parse("2006-01-02", mr.Date)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q", mr.Date)
	}
	slot, err := schedule.ParseSlot(mr.Time)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return schedule.ResolveRange(date, slot, mr.Timezone, mr.DurationMinutes)
}

// meetingForm is the reverse mapping sent alongside a meeting so the edit
// form can pre-fill its fields.
type meetingForm struct {
	Date            string `json:"date"`
	Time            string `json:"time"`
	Timezone        string `json:"timezone"`
	DurationMinutes int    `json:"duration_minutes"`
}

type meetingResponse struct {
	store.Meeting
	Completed bool         `json:"completed"`
	Form      *meetingForm `json:"form,omitempty"`
}

func (s *server) meetingResponse(m store.Meeting, tz string) meetingResponse {
	resp := meetingResponse{Meeting: m, Completed: m.Completed(time.Now())}
	if tz == "" {
		return resp
	}
	date, slot, err := schedule.Localize(m.StartTime, tz)
	if err != nil {
		s.logger.Warn("localize failed", "meeting", m.ID, "tz", tz, "error", err)
		return resp
	}
	resp.Form = &meetingForm{
		Date:            date.Format("2006-01-02"),
		Time:            slot.String(),
		Timezone:        tz,
		DurationMinutes: schedule.BucketDuration(m.StartTime, m.EndTime),
	}
	return resp
}

func (s *server) allowPage(w http.ResponseWriter, r *http.Request, route string) bool {
	if s.gate.Allow(r.Context(), role(r), route) {
		return true
	}
	writeError(w, http.StatusForbidden, "access denied")
	return false
}

func (s *server) handleMeetings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createMeeting(w, r)
	case http.MethodGet:
		s.listMeetings(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *server) createMeeting(w http.ResponseWriter, r *http.Request) {
	if !s.allowPage(w, r, "/meetings") {
		return
	}

	var req meetingRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1024*1024)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start, end, err := req.resolve()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	m := store.Meeting{
		Subject:     strings.TrimSpace(req.Subject),
		Description: req.Description,
		StartTime:   start,
		EndTime:     end,
		LeadID:      req.LeadID,
		ContactID:   req.ContactID,
		Status:      grid.StatusScheduled,
		CreatedBy:   actor(r),
	}

	if req.CreateJoinLink {
		if s.links == nil {
			writeError(w, http.StatusBadRequest, "join link provider is not configured")
			return
		}
		url, err := s.links.Create(r.Context(), meetlink.Request{
			Subject:   m.Subject,
			Attendees: req.Attendees,
			StartTime: start,
			EndTime:   end,
			Timezone:  req.Timezone,
		})
		if err != nil {
			s.logger.Error("join link creation failed", "subject", m.Subject, "error", err)
			writeError(w, http.StatusBadGateway, "could not create join link")
			return
		}
		m.JoinURL = &url
	}

	if err := s.store.CreateMeeting(r.Context(), &m); err != nil {
		s.logger.Error("meeting creation failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.audit.Record(r.Context(), actor(r), "meeting.created", "/meetings", m.ID.String())
	writeJSON(w, http.StatusCreated, s.meetingResponse(m, req.Timezone))
}

func (s *server) listMeetings(w http.ResponseWriter, r *http.Request) {
	tz := r.URL.Query().Get("tz")
	if tz == "" {
		tz = "UTC"
	}
	zone, ok := schedule.ZoneByName(tz)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown timezone")
		return
	}
	loc, err := zone.Location()
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown timezone")
		return
	}

	dayStr := r.URL.Query().Get("day")
	if dayStr == "" {
		meetings, err := s.store.UpcomingMeetings(r.Context(), time.Now(), 100)
		if err != nil {
			s.logger.Error("listing meetings failed", "error", err)
			writeError(w, http.StatusInternalServerError, "could not list meetings")
			return
		}
		s.writeMeetingList(w, meetings, tz)
		return
	}

	day, err := time.ParseInLocation("2006-01-02", dayStr, loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid day")
		return
	}
	meetings, err := s.store.MeetingsOn(r.Context(), day, loc)
	if err != nil {
		s.logger.Error("listing meetings failed", "day", dayStr, "error", err)
		writeError(w, http.StatusInternalServerError, "could not list meetings")
		return
	}
	s.writeMeetingList(w, meetings, tz)
}

func (s *server) writeMeetingList(w http.ResponseWriter, meetings []store.Meeting, tz string) {
	out := make([]meetingResponse, len(meetings))
	for i, m := range meetings {
		out[i] = s.meetingResponse(m, tz)
	}
	writeJSON(w, http.StatusOK, map[string]any{"meetings": out})
}

func (s *server) handleMeetingByID(w http.ResponseWriter, r *http.Request) {
	// The exact /api/v1/meetings/batch-delete registration takes precedence
	// over this subtree handler, so anything left here is an id.
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/meetings/")
	id, err := uuid.Parse(rest)
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown meeting")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getMeeting(w, r, id)
	case http.MethodPatch:
		s.updateMeeting(w, r, id)
	case http.MethodDelete:
		s.deleteMeeting(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *server) getMeeting(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	m, err := s.store.Meeting(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "unknown meeting")
		return
	}
	if err != nil {
		s.logger.Error("fetching meeting failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not fetch meeting")
		return
	}
	writeJSON(w, http.StatusOK, s.meetingResponse(m, r.URL.Query().Get("tz")))
}

// updateMeetingRequest is the edit-form payload. Status lets the form cancel
// a meeting; everything else mirrors creation.
type updateMeetingRequest struct {
	meetingRequest
	Status *string `json:"status"`
}

func (s *server) updateMeeting(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if !s.allowPage(w, r, "/meetings") {
		return
	}

	var req updateMeetingRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1024*1024)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := s.store.Meeting(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "unknown meeting")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not fetch meeting")
		return
	}

	start, end, err := req.resolve()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	m.Subject = strings.TrimSpace(req.Subject)
	m.Description = req.Description
	m.StartTime = start
	m.EndTime = end
	m.LeadID = req.LeadID
	m.ContactID = req.ContactID
	if req.Status != nil {
		m.Status = grid.Status(*req.Status)
	}

	if err := s.store.UpdateMeeting(r.Context(), &m); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.audit.Record(r.Context(), actor(r), "meeting.updated", "/meetings", id.String())
	writeJSON(w, http.StatusOK, s.meetingResponse(m, req.Timezone))
}

func (s *server) deleteMeeting(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if !s.allowPage(w, r, "/meetings") {
		return
	}
	err := s.store.DeleteMeeting(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "unknown meeting")
		return
	}
	if err != nil {
		s.logger.Error("deleting meeting failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not delete meeting")
		return
	}
	s.audit.Record(r.Context(), actor(r), "meeting.deleted", "/meetings", id.String())
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleBatchDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.allowPage(w, r, "/meetings") {
		return
	}

	var req struct {
		IDs []uuid.UUID `json:"ids"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1024*1024)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	deleted, err := s.store.DeleteMeetings(r.Context(), req.IDs)
	if err != nil {
		s.logger.Error("batch delete failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not delete meetings")
		return
	}
	s.audit.Record(r.Context(), actor(r), "meeting.batch_deleted", "/meetings",
		fmt.Sprintf("requested=%d deleted=%d", len(req.IDs), deleted))
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (s *server) handleSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	q := r.URL.Query()
	tz := q.Get("tz")
	if _, ok := schedule.ZoneByName(tz); !ok {
		writeError(w, http.StatusBadRequest, "unknown timezone")
		return
	}
	date, err := time.Parse("2006-01-02", q.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	slots, err := schedule.AvailableSlots(time.Now(), date, tz)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out := make([]string, len(slots))
	for i, sl := range slots {
		out[i] = sl.String()
	}
	// none_available lets the form show "no times available" instead of an
	// empty picker.
	writeJSON(w, http.StatusOK, map[string]any{
		"slots":          out,
		"none_available": len(out) == 0,
	})
}

type calendarEvent struct {
	ID         uuid.UUID       `json:"id"`
	Subject    string          `json:"subject"`
	Box        grid.Box        `json:"box"`
	Appearance grid.Appearance `json:"appearance"`
}

func (s *server) handleCalendarDay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	q := r.URL.Query()
	tz := q.Get("tz")
	zone, ok := schedule.ZoneByName(tz)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown timezone")
		return
	}
	loc, err := zone.Location()
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown timezone")
		return
	}
	day, err := time.ParseInLocation("2006-01-02", q.Get("date"), loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	window := grid.Window{StartHour: 8, EndHour: 20}
	if v := q.Get("from"); v != "" {
		if h, err := strconv.Atoi(v); err == nil {
			window.StartHour = h
		}
	}
	if v := q.Get("to"); v != "" {
		if h, err := strconv.Atoi(v); err == nil {
			window.EndHour = h
		}
	}
	if window.EndHour <= window.StartHour {
		writeError(w, http.StatusBadRequest, "invalid hour window")
		return
	}

	meetings, err := s.store.MeetingsOn(r.Context(), day, loc)
	if err != nil {
		s.logger.Error("calendar query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load calendar")
		return
	}

	now := time.Now()
	var events []calendarEvent
	for _, m := range meetings {
		if !grid.SameDay(m.StartTime, day, loc) {
			continue
		}
		box, ok := grid.Place(m.StartTime.In(loc), m.EndTime.In(loc), window)
		if !ok {
			continue
		}
		events = append(events, calendarEvent{
			ID:         m.ID,
			Subject:    m.Subject,
			Box:        box,
			Appearance: grid.Classify(m.Status, m.StartTime, now),
		})
	}

	resp := map[string]any{"events": events}
	if offset, visible := grid.NowMarker(now.In(loc), window); visible && grid.SameDay(now, day, loc) {
		resp["now_marker"] = offset
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleAccess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	route := r.URL.Query().Get("route")
	allowed := s.gate.Allow(r.Context(), role(r), route)
	writeJSON(w, http.StatusOK, map[string]any{
		"route":   access.NormalizeRoute(route),
		"allowed": allowed,
	})
}

func (s *server) handleZones(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"zones": schedule.Zones()})
}

func (s *server) handleICSFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	now := time.Now()
	meetings, err := s.store.UpcomingMeetings(r.Context(), now.AddDate(0, -1, 0), 500)
	if err != nil {
		s.logger.Error("ics feed query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not build feed")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	_, _ = w.Write([]byte(icsfeed.Feed(meetings, now)))
}
