package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/mediatray/internal/dom"
	"github.com/listenupapp/mediatray/internal/host"
)

func (s *Server) registerScreenRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "reportNavigation",
		Method:        http.MethodPost,
		Path:          "/api/v1/screen/navigate",
		Summary:       "Report navigation",
		Description:   "Reports that the host now shows a new screen",
		Tags:          []string{"Screen"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleNavigate)

	huma.Register(s.api, huma.Operation{
		OperationID: "getScreen",
		Method:      http.MethodGet,
		Path:        "/api/v1/screen",
		Summary:     "Current screen",
		Description: "Returns the last reported navigation",
		Tags:        []string{"Screen"},
	}, s.handleGetScreen)

	huma.Register(s.api, huma.Operation{
		OperationID:   "reportReady",
		Method:        http.MethodPost,
		Path:          "/api/v1/dom/ready",
		Summary:       "Report page ready",
		Description:   "Reports that the page finished loading",
		Tags:          []string{"DOM"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleReady)

	huma.Register(s.api, huma.Operation{
		OperationID:   "reportElements",
		Method:        http.MethodPost,
		Path:          "/api/v1/dom/elements",
		Summary:       "Report element mutations",
		Description:   "Reports a batch of added or changed elements and removed element ids",
		Tags:          []string{"DOM"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleElements)

	huma.Register(s.api, huma.Operation{
		OperationID:   "resetPage",
		Method:        http.MethodPost,
		Path:          "/api/v1/dom/reset",
		Summary:       "Reset page",
		Description:   "Forgets every reported element",
		Tags:          []string{"DOM"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleReset)

	huma.Register(s.api, huma.Operation{
		OperationID: "listObservers",
		Method:      http.MethodGet,
		Path:        "/api/v1/dom/observers",
		Summary:     "List observers",
		Description: "Returns the selectors the host must report mutations for",
		Tags:        []string{"DOM"},
	}, s.handleObservers)
}

// NavigateInput is a navigation report.
type NavigateInput struct {
	Body host.Navigation
}

// ScreenOutput is the current navigation.
type ScreenOutput struct {
	Body host.Navigation
}

// ElementsRequest is a mutation batch.
type ElementsRequest struct {
	Elements []dom.Snapshot `json:"elements,omitempty" doc:"Added or changed elements"`
	Removed  []string       `json:"removed,omitempty" doc:"Ids of removed elements"`
}

// ElementsInput wraps ElementsRequest for Huma.
type ElementsInput struct {
	Body ElementsRequest
}

// ObserversOutput lists observed selectors with their options.
type ObserversOutput struct {
	Body map[string]dom.ObserveOptions
}

func (s *Server) handleNavigate(ctx context.Context, input *NavigateInput) (*struct{}, error) {
	return nil, s.deps.Loop.Do(ctx, func(ctx context.Context) {
		s.deps.Navigator.Navigate(ctx, input.Body)
	})
}

func (s *Server) handleGetScreen(_ context.Context, _ *struct{}) (*ScreenOutput, error) {
	return &ScreenOutput{Body: s.deps.Navigator.Current()}, nil
}

func (s *Server) handleReady(ctx context.Context, _ *struct{}) (*struct{}, error) {
	return nil, s.deps.Loop.Do(ctx, func(context.Context) {
		s.deps.Page.Ready()
	})
}

func (s *Server) handleElements(ctx context.Context, input *ElementsInput) (*struct{}, error) {
	return nil, s.deps.Loop.Do(ctx, func(context.Context) {
		if len(input.Body.Removed) > 0 {
			s.deps.Page.Remove(input.Body.Removed...)
		}
		s.deps.Page.Batch(input.Body.Elements)
	})
}

func (s *Server) handleReset(ctx context.Context, _ *struct{}) (*struct{}, error) {
	return nil, s.deps.Loop.Do(ctx, func(context.Context) {
		s.deps.Page.Reset()
	})
}

func (s *Server) handleObservers(_ context.Context, _ *struct{}) (*ObserversOutput, error) {
	return &ObserversOutput{Body: s.deps.Page.Observed()}, nil
}
