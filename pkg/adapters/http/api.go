package http

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

//go:embed openapi.yaml
var openapiSpec []byte

// CreateMissionRequest is the body of POST /missions.
type CreateMissionRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// TransitionRequest is the body of POST /missions/{id}/transitions.
type TransitionRequest struct {
	Trigger string `json:"trigger"`
}

// HistoryEntry is one applied transition.
type HistoryEntry struct {
	Trigger string    `json:"trigger"`
	From    string    `json:"from"`
	To      string    `json:"to"`
	At      time.Time `json:"at"`
}

// Mission is the wire form of a mission snapshot.
type Mission struct {
	Id          string         `json:"id"`
	ShortId     string         `json:"short_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	State       string         `json:"state"`
	StateLabel  string         `json:"state_label"`
	History     []HistoryEntry `json:"history"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TriggersResponse lists the triggers legal from State.
type TriggersResponse struct {
	State    string   `json:"state"`
	Triggers []string `json:"triggers"`
}

// Rule is one edge of the workflow graph.
type Rule struct {
	Trigger string `json:"trigger"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// Workflow is the static workflow graph.
type Workflow struct {
	Initial  string   `json:"initial"`
	States   []string `json:"states"`
	Triggers []string `json:"triggers"`
	Rules    []Rule   `json:"rules"`
}

// Error is the body of every non-2xx JSON response.
type Error struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	State   *string `json:"state,omitempty"`
	Trigger *string `json:"trigger,omitempty"`
}

// ListMissionsParams defines parameters for ListMissions.
type ListMissionsParams struct {
	State *string `form:"state,omitempty" json:"state,omitempty"`
}

// GetWorkflowMermaidParams defines parameters for GetWorkflowMermaid.
type GetWorkflowMermaidParams struct {
	MissionId *string `form:"mission_id,omitempty" json:"mission_id,omitempty"`
}

// SubscribeEventsParams defines parameters for SubscribeEvents.
type SubscribeEventsParams struct {
	MissionId *string `form:"mission_id,omitempty" json:"mission_id,omitempty"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /missions)
	ListMissions(w http.ResponseWriter, r *http.Request, params ListMissionsParams)
	// (POST /missions)
	CreateMission(w http.ResponseWriter, r *http.Request)
	// (GET /missions/{id})
	GetMission(w http.ResponseWriter, r *http.Request, id string)
	// (GET /missions/{id}/triggers)
	GetAvailableTriggers(w http.ResponseWriter, r *http.Request, id string)
	// (POST /missions/{id}/transitions)
	ApplyTransition(w http.ResponseWriter, r *http.Request, id string)
	// (GET /workflow)
	GetWorkflow(w http.ResponseWriter, r *http.Request)
	// (GET /workflow/mermaid)
	GetWorkflowMermaid(w http.ResponseWriter, r *http.Request, params GetWorkflowMermaidParams)
	// (GET /events)
	SubscribeEvents(w http.ResponseWriter, r *http.Request, params SubscribeEventsParams)
	// (GET /health)
	GetHealth(w http.ResponseWriter, r *http.Request)
	// (GET /info)
	GetInfo(w http.ResponseWriter, r *http.Request)
}

// ServerInterfaceWrapper binds request parameters before calling the handlers.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// InvalidParamFormatError is reported when a parameter cannot be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

func (siw *ServerInterfaceWrapper) pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "id", Err: err})
		return "", false
	}
	return id, true
}

func (siw *ServerInterfaceWrapper) optionalQuery(w http.ResponseWriter, r *http.Request, name string, dest **string) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}

// ListMissions operation middleware
func (siw *ServerInterfaceWrapper) ListMissions(w http.ResponseWriter, r *http.Request) {
	var params ListMissionsParams
	if !siw.optionalQuery(w, r, "state", &params.State) {
		return
	}
	siw.Handler.ListMissions(w, r, params)
}

// CreateMission operation middleware
func (siw *ServerInterfaceWrapper) CreateMission(w http.ResponseWriter, r *http.Request) {
	siw.Handler.CreateMission(w, r)
}

// GetMission operation middleware
func (siw *ServerInterfaceWrapper) GetMission(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.pathID(w, r); ok {
		siw.Handler.GetMission(w, r, id)
	}
}

// GetAvailableTriggers operation middleware
func (siw *ServerInterfaceWrapper) GetAvailableTriggers(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.pathID(w, r); ok {
		siw.Handler.GetAvailableTriggers(w, r, id)
	}
}

// ApplyTransition operation middleware
func (siw *ServerInterfaceWrapper) ApplyTransition(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.pathID(w, r); ok {
		siw.Handler.ApplyTransition(w, r, id)
	}
}

// GetWorkflow operation middleware
func (siw *ServerInterfaceWrapper) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetWorkflow(w, r)
}

// GetWorkflowMermaid operation middleware
func (siw *ServerInterfaceWrapper) GetWorkflowMermaid(w http.ResponseWriter, r *http.Request) {
	var params GetWorkflowMermaidParams
	if !siw.optionalQuery(w, r, "mission_id", &params.MissionId) {
		return
	}
	siw.Handler.GetWorkflowMermaid(w, r, params)
}

// SubscribeEvents operation middleware
func (siw *ServerInterfaceWrapper) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	var params SubscribeEventsParams
	if !siw.optionalQuery(w, r, "mission_id", &params.MissionId) {
		return
	}
	siw.Handler.SubscribeEvents(w, r, params)
}

// GetHealth operation middleware
func (siw *ServerInterfaceWrapper) GetHealth(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetHealth(w, r)
}

// GetInfo operation middleware
func (siw *ServerInterfaceWrapper) GetInfo(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetInfo(w, r)
}

// HandlerFromMux registers the API routes on r and returns it.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
		ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
			writeError(w, http.StatusBadRequest, Error{Code: codeInvalidRequest, Message: err.Error()})
		},
	}

	r.Group(func(r chi.Router) {
		r.Get("/missions", wrapper.ListMissions)
		r.Post("/missions", wrapper.CreateMission)
		r.Get("/missions/{id}", wrapper.GetMission)
		r.Get("/missions/{id}/triggers", wrapper.GetAvailableTriggers)
		r.Post("/missions/{id}/transitions", wrapper.ApplyTransition)
		r.Get("/workflow", wrapper.GetWorkflow)
		r.Get("/workflow/mermaid", wrapper.GetWorkflowMermaid)
		r.Get("/events", wrapper.SubscribeEvents)
		r.Get("/health", wrapper.GetHealth)
		r.Get("/info", wrapper.GetInfo)
	})
	return r
}

var (
	swaggerOnce sync.Once
	swaggerDoc  *openapi3.T
	swaggerErr  error
)

// rawSpec returns the embedded OpenAPI document.
func rawSpec() ([]byte, error) {
	if len(openapiSpec) == 0 {
		return nil, fmt.Errorf("openapi spec is empty")
	}
	return openapiSpec, nil
}

// GetSwagger returns the parsed and validated OpenAPI document.
func GetSwagger() (*openapi3.T, error) {
	swaggerOnce.Do(func() {
		data, err := rawSpec()
		if err != nil {
			swaggerErr = err
			return
		}
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(data)
		if err != nil {
			swaggerErr = fmt.Errorf("error loading Swagger: %w", err)
			return
		}
		if err := doc.Validate(context.Background()); err != nil {
			swaggerErr = fmt.Errorf("invalid Swagger: %w", err)
			return
		}
		swaggerDoc = doc
	})
	return swaggerDoc, swaggerErr
}
