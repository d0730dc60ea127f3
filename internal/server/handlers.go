// ABOUTME: HTTP handlers for field listing, capture, favourites and deletion
// ABOUTME: Request and response bodies mirror the stored document schema

package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/harper/cropfit/internal/flow"
	"github.com/harper/cropfit/internal/geojson"
	"github.com/harper/cropfit/internal/models"
	"github.com/labstack/echo/v4"
)

type pointBody struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type fieldResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Center    pointBody   `json:"center"`
	Points    []pointBody `json:"points"`
	Timestamp int64       `json:"timestamp"`
	Favourite bool        `json:"favourite"`
}

func toResponse(f *models.Field) fieldResponse {
	r := fieldResponse{
		ID:        f.ID,
		Name:      f.Name,
		Center:    pointBody{Lat: f.Center.Latitude, Lng: f.Center.Longitude},
		Points:    make([]pointBody, len(f.Boundary)),
		Timestamp: f.CreatedAt,
		Favourite: f.IsFavorite,
	}
	for i, p := range f.Boundary {
		r.Points[i] = pointBody{Lat: p.Latitude, Lng: p.Longitude}
	}
	return r
}

type createRequest struct {
	Name   string      `json:"name"`
	Points []pointBody `json:"points"`
}

type favouriteRequest struct {
	Favourite *bool `json:"favourite"`
}

var errBadJSON = errors.New("bad json")

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":     "ok",
		"uptime_sec": int(time.Since(s.start).Seconds()),
		"time":       time.Now().Format(time.RFC3339),
	})
}

func (s *Server) listFields(c echo.Context) error {
	fields, err := s.repo.ListFields(c.Request().Context(), userID(c))
	if err != nil {
		return s.fail(c, err)
	}
	out := make([]fieldResponse, len(fields))
	for i, f := range fields {
		out[i] = toResponse(f)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) createField(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(errBadJSON))
	}

	points := make([]models.Coordinate, len(req.Points))
	for i, p := range req.Points {
		points[i] = models.NewCoordinate(p.Lat, p.Lng)
	}

	field, err := flow.CreateField(c.Request().Context(), s.repo, userID(c), req.Name, points)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, toResponse(field))
}

func (s *Server) setFavourite(c echo.Context) error {
	var req favouriteRequest
	if err := c.Bind(&req); err != nil || req.Favourite == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "favourite is required"})
	}

	if err := s.repo.UpdateFavorite(c.Request().Context(), userID(c), c.Param("id"), *req.Favourite); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": flow.MsgFieldUpdated})
}

func (s *Server) deleteField(c echo.Context) error {
	if err := s.repo.DeleteField(c.Request().Context(), userID(c), c.Param("id")); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) fieldsGeoJSON(c echo.Context) error {
	fields, err := s.repo.ListFields(c.Request().Context(), userID(c))
	if err != nil {
		return s.fail(c, err)
	}

	fc := geojson.ToPolygonFeatureCollection(fields)
	if c.QueryParam("kind") == "centroids" {
		fc = geojson.ToCentroidFeatureCollection(fields)
	}
	body, err := fc.ToJSON()
	if err != nil {
		return s.fail(c, err)
	}
	return c.Blob(http.StatusOK, "application/geo+json", body)
}
