package v1

import (
	"github.com/resqnow/emergency-dispatch/internal/feed"
	"github.com/resqnow/emergency-dispatch/internal/models"
	"github.com/resqnow/emergency-dispatch/internal/service"
)

// ModelToReportResponse converts a domain report into its response DTO.
func ModelToReportResponse(model *models.IncidentReport) ReportResponse {
	return ReportResponse{
		ID:          model.ID,
		Description: model.Description,
		ImageURL:    model.ImageURL,
		Latitude:    model.Latitude,
		Longitude:   model.Longitude,
		Status:      string(model.Status),
		AssignedTo:  model.AssignedTo,
		CreatedAt:   model.CreatedAt,
	}
}

// BuildFeedResponse projects feed data for the viewer into the response DTO.
func BuildFeedResponse(viewer models.ResponderContext, data *service.FeedData, feedLimit int) (FeedResponse, error) {
	cards, err := feed.Build(viewer, data, feedLimit)
	if err != nil {
		return FeedResponse{}, err
	}
	return FeedResponse{
		Cards:     cards,
		FetchedAt: data.FetchedAt,
	}, nil
}
