package handlers

import (
	"net/http"

	"github.com/chachabrian/uniride-backend/internal/locations"
	"github.com/chachabrian/uniride-backend/pkg/api"
	"github.com/gin-gonic/gin"
)

// ListLocations returns the campus directory in display order
func ListLocations(graph *locations.Graph) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := api.LocationListResponse{Locations: []api.Location{}}
		if dir := graph.Directory(); dir != nil {
			for _, loc := range dir.All() {
				resp.Locations = append(resp.Locations, api.Location{Name: loc.Name, Lat: loc.Lat, Lng: loc.Lng})
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

// NearbyLocations returns the places a search from :name also covers
func NearbyLocations(graph *locations.Graph) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, ok := graph.Lookup(c.Param("name"))
		if !ok {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Unknown location", Code: api.CodeNotFound})
			return
		}

		resp := api.NearbyResponse{Location: name, Nearby: []api.NearbyLocation{}}
		for _, n := range graph.Nearby(name) {
			resp.Nearby = append(resp.Nearby, api.NearbyLocation{Name: n.Name, DistanceKm: n.DistanceKm})
		}
		c.JSON(http.StatusOK, resp)
	}
}
