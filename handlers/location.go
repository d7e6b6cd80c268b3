package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/pricewatch_backend/models"
	"bitbucket.org/mmdatafocus/pricewatch_backend/utils"
	"github.com/gin-gonic/gin"
)

var (
	stateMessages = errorMessages{invalidId: "Invalid state ID format", notFound: "State not found"}
	cityMessages  = errorMessages{invalidId: "Invalid city ID format", notFound: "City not found"}
)

func getStatesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		states, err := models.GetStates(c.Request.Context())
		if err != nil {
			respondError(c, "getStatesHandler", err, errorMessages{})
			return
		}
		c.JSON(http.StatusOK, states)
	}
}

func getCitiesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		stateId, err := utils.ParseId(c.Param("id"))
		if err != nil {
			respondError(c, "getCitiesHandler", err, stateMessages)
			return
		}
		cities, err := models.GetCitiesByState(c.Request.Context(), stateId)
		if err != nil {
			respondError(c, "getCitiesHandler", err, stateMessages)
			return
		}
		c.JSON(http.StatusOK, cities)
	}
}

func getMarketsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		cityId, err := utils.ParseId(c.Param("id"))
		if err != nil {
			respondError(c, "getMarketsHandler", err, cityMessages)
			return
		}
		markets, err := models.GetMarketsByCity(c.Request.Context(), cityId)
		if err != nil {
			respondError(c, "getMarketsHandler", err, cityMessages)
			return
		}
		c.JSON(http.StatusOK, markets)
	}
}
