package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/pricewatch_backend/models"
	"bitbucket.org/mmdatafocus/pricewatch_backend/utils"
	"github.com/gin-gonic/gin"
)

var (
	itemMessages = errorMessages{invalidId: "Invalid item ID format", notFound: "Item not found"}
	unitMessages = errorMessages{invalidId: "Invalid unit ID format", notFound: "Unit not found"}
)

// 201 when this request inserted the row, 200 when it matched an existing one
func findOrCreateStatus(created bool) int {
	if created {
		return http.StatusCreated
	}
	return http.StatusOK
}

func getItemsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := models.GetItems(c.Request.Context())
		if err != nil {
			respondError(c, "getItemsHandler", err, errorMessages{})
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func getItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := utils.ParseId(c.Param("id"))
		if err != nil {
			respondError(c, "getItemHandler", err, itemMessages)
			return
		}
		item, err := models.GetItem(c.Request.Context(), id)
		if err != nil {
			respondError(c, "getItemHandler", err, itemMessages)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func createItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewItem
		if err := bindJSON(c, &input); err != nil {
			respondError(c, "createItemHandler", err, errorMessages{})
			return
		}
		item, created, err := models.FindOrCreateItem(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "createItemHandler", err, errorMessages{})
			return
		}
		c.JSON(findOrCreateStatus(created), item)
	}
}

func getUnitsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		units, err := models.GetUnits(c.Request.Context())
		if err != nil {
			respondError(c, "getUnitsHandler", err, errorMessages{})
			return
		}
		c.JSON(http.StatusOK, units)
	}
}

func getUnitHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := utils.ParseId(c.Param("id"))
		if err != nil {
			respondError(c, "getUnitHandler", err, unitMessages)
			return
		}
		unit, err := models.GetUnit(c.Request.Context(), id)
		if err != nil {
			respondError(c, "getUnitHandler", err, unitMessages)
			return
		}
		c.JSON(http.StatusOK, unit)
	}
}

func createUnitHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewUnit
		if err := bindJSON(c, &input); err != nil {
			respondError(c, "createUnitHandler", err, errorMessages{})
			return
		}
		unit, created, err := models.FindOrCreateUnit(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "createUnitHandler", err, errorMessages{})
			return
		}
		c.JSON(findOrCreateStatus(created), unit)
	}
}
