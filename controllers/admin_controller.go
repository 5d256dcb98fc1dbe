package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/avtoyurist/docbot/orders"
	"github.com/avtoyurist/docbot/utils"
	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"github.com/tealeg/xlsx"
)

// AdminController exposes operator endpoints for reconciling manual
// transfers against the bank statement.
type AdminController struct {
	store *orders.Store
}

// NewAdminController wires the operator endpoints
func NewAdminController(store *orders.Store) *AdminController {
	return &AdminController{store: store}
}

// Admin: download all orders as Excel
// GET /v1/admin/orders/export
func (a *AdminController) ExportOrdersExcel(c *gin.Context) {
	utils.LogInfo("ExportOrdersExcel called")

	list, err := a.store.ListOrders()
	if err != nil {
		utils.LogError("Failed to fetch orders: %v", err)
		utils.InternalServerError(c, "Failed to fetch orders", err.Error())
		return
	}
	utils.LogDebug("Retrieved %d orders for Excel export", len(list))

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		utils.LogError("Failed to create sheet: %v", err)
		utils.InternalServerError(c, "Failed to build export", err.Error())
		return
	}

	header := sheet.AddRow()
	for _, h := range []string{"User ID", "Category", "Amount (RUB)", "Code", "Verified", "Issued At"} {
		header.AddCell().Value = h
	}

	verifiedCount := 0
	for _, order := range list {
		row := sheet.AddRow()
		row.AddCell().Value = strconv.FormatInt(order.UserID, 10)
		row.AddCell().Value = order.Category
		row.AddCell().Value = fmt.Sprintf("%d.%02d", order.Amount/100, order.Amount%100)
		row.AddCell().Value = order.Code
		row.AddCell().Value = strconv.FormatBool(order.Verified)
		row.AddCell().Value = order.CreatedAt.Format("2006-01-02 15:04:05")
		if order.Verified {
			verifiedCount++
		}
	}

	summary := sheet.AddRow()
	summary.AddCell().Value = fmt.Sprintf("Total: %d", len(list))
	summary.AddCell().Value = fmt.Sprintf("Verified: %d", verifiedCount)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write Excel export: %v", err)
	}
	utils.LogInfo("Excel export completed with %d orders", len(list))
}

// Admin: download all orders as PDF
// GET /v1/admin/orders/export/pdf
func (a *AdminController) ExportOrdersPDF(c *gin.Context) {
	utils.LogInfo("ExportOrdersPDF called")

	list, err := a.store.ListOrders()
	if err != nil {
		utils.LogError("Failed to fetch orders: %v", err)
		utils.InternalServerError(c, "Failed to fetch orders", err.Error())
		return
	}
	utils.LogDebug("Retrieved %d orders for PDF export", len(list))

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(100, 10, "Orders report")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(30, 8, "User ID", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 8, "Category", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, "Amount (RUB)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 8, "Code", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 8, "Verified", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 8, "Issued At", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 11)
	verifiedCount := 0
	for _, order := range list {
		pdf.CellFormat(30, 8, strconv.FormatInt(order.UserID, 10), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, order.Category, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("%d.%02d", order.Amount/100, order.Amount%100), "1", 0, "R", false, 0, "")
		pdf.CellFormat(60, 8, order.Code, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, strconv.FormatBool(order.Verified), "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 8, order.CreatedAt.Format("2006-01-02 15:04"), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		if order.Verified {
			verifiedCount++
		}
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(100, 8, fmt.Sprintf("Total: %d, verified: %d", len(list), verifiedCount))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.LogError("Failed to render PDF export: %v", err)
		utils.InternalServerError(c, "Failed to build export", err.Error())
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", "attachment; filename=orders.pdf")
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	utils.LogInfo("PDF export completed with %d orders", len(list))
}
