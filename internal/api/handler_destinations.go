package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hallpass-backend/internal/model"
	"hallpass-backend/internal/parse"
)

// DestinationResponse represents the API response for a single destination.
type DestinationResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	DisplayName   string `json:"displayName"`
	Building      string `json:"building"`
	Floor         int    `json:"floor"`
	ActivePasses  int    `json:"activePasses"`
	CapacityLimit int    `json:"capacityLimit"`
}

// GetDestinations handles the GET /api/destinations request: registered
// destinations with their live active-pass counts and capacity limits.
func (h *Handler) GetDestinations(c *gin.Context) {
	var destinations []model.Destination
	if err := h.db.Find(&destinations).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve destinations"})
		return
	}

	passes, err := h.manager.ListActive()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to list active passes"})
		return
	}

	activeCounts := make(map[string]int)
	for _, p := range passes {
		activeCounts[parse.NormalizeLocation(p.Destination)]++
	}

	responses := make([]DestinationResponse, 0, len(destinations))
	for _, d := range destinations {
		responses = append(responses, DestinationResponse{
			ID:            d.ID,
			Name:          d.Name,
			DisplayName:   d.DisplayName,
			Building:      d.Building,
			Floor:         d.Floor,
			ActivePasses:  activeCounts[d.Name],
			CapacityLimit: h.policy.CapacityLimit(d.Name),
		})
	}
	c.JSON(http.StatusOK, responses)
}
