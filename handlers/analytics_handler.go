package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type dailySalesRow struct {
	Date    string  `bson:"_id"`
	Sales   int64   `bson:"sales"`
	Revenue float64 `bson:"revenue"`
}

// buildDailySales emits one entry per day in the window, days without orders
// show as zero. $dateToString groups by UTC date, so the fill loop walks UTC
// days as well or the two would disagree on non-UTC hosts.
func buildDailySales(rows []dailySalesRow, startDate, endDate time.Time) []gin.H {
	rowsByDate := make(map[string]dailySalesRow, len(rows))
	for _, row := range rows {
		rowsByDate[row.Date] = row
	}

	startDate = startDate.UTC()
	endDate = endDate.UTC()

	dailySales := make([]gin.H, 0, 8)
	for day := startDate; !day.After(endDate); day = day.AddDate(0, 0, 1) {
		date := day.Format("2006-01-02")
		row := rowsByDate[date]
		dailySales = append(dailySales, gin.H{
			"date":    date,
			"sales":   row.Sales,
			"revenue": row.Revenue,
		})
	}
	return dailySales
}

// GetAnalyticsHandler returns store-wide totals and the daily sales/revenue
// series for the last seven days.
func GetAnalyticsHandler(c *gin.Context, db *mongo.Database) {
	ctx := c.Request.Context()

	totalUsers, err := db.Collection("users").CountDocuments(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch analytics",
			"error":   err.Error(),
		})
		return
	}

	totalProducts, err := db.Collection("products").CountDocuments(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch analytics",
			"error":   err.Error(),
		})
		return
	}

	salesPipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":          nil,
			"totalSales":   bson.M{"$sum": 1},
			"totalRevenue": bson.M{"$sum": "$totalAmount"},
		}}},
	}
	cursor, err := db.Collection("orders").Aggregate(ctx, salesPipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch analytics",
			"error":   err.Error(),
		})
		return
	}

	var salesTotals []struct {
		TotalSales   int64   `bson:"totalSales"`
		TotalRevenue float64 `bson:"totalRevenue"`
	}
	if err := cursor.All(ctx, &salesTotals); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch analytics",
			"error":   err.Error(),
		})
		return
	}

	var totalSales int64
	var totalRevenue float64
	if len(salesTotals) > 0 {
		totalSales = salesTotals[0].TotalSales
		totalRevenue = salesTotals[0].TotalRevenue
	}

	endDate := time.Now().UTC()
	startDate := endDate.AddDate(0, 0, -7)

	dailyPipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"createdAt": bson.M{"$gte": startDate, "$lte": endDate},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":     bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$createdAt"}},
			"sales":   bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": "$totalAmount"},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	dailyCursor, err := db.Collection("orders").Aggregate(ctx, dailyPipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch analytics",
			"error":   err.Error(),
		})
		return
	}

	var dailyRows []dailySalesRow
	if err := dailyCursor.All(ctx, &dailyRows); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to fetch analytics",
			"error":   err.Error(),
		})
		return
	}

	dailySales := buildDailySales(dailyRows, startDate, endDate)

	c.JSON(http.StatusOK, gin.H{
		"analyticsData": gin.H{
			"users":        totalUsers,
			"products":     totalProducts,
			"totalSales":   totalSales,
			"totalRevenue": totalRevenue,
		},
		"dailySalesData": dailySales,
	})
}
