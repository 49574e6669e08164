package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"consec/middleware"

	"github.com/gin-gonic/gin"
)

// ExportHandler 导出处理器
type ExportHandler struct{}

// NewExportHandler 创建导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// ExportCSV 导出当前用户的支出为 CSV
// @Summary 导出我的支出 CSV
// @Description 按日期范围导出当前登录用户的支出记录为 CSV 文件。
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param dataInicio query string true "起始日期 2006-01-02"
// @Param dataFim query string true "结束日期 2006-01-02"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} ErrorResponse "参数错误"
// @Failure 401 {object} ErrorResponse "未授权"
// @Router /api/custo/exportar/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	inicioStr := c.Query("dataInicio")
	fimStr := c.Query("dataFim")
	if inicioStr == "" || fimStr == "" {
		BadRequest(c, "Informe dataInicio e dataFim")
		return
	}

	inicio, err := time.ParseInLocation("2006-01-02", inicioStr, time.Local)
	if err != nil {
		BadRequest(c, "Data inicial inválida, use o formato 2006-01-02")
		return
	}
	fim, err := time.ParseInLocation("2006-01-02", fimStr, time.Local)
	if err != nil {
		BadRequest(c, "Data final inválida, use o formato 2006-01-02")
		return
	}
	fim = fim.Add(24*time.Hour - time.Second)

	var custos []CustoResponse
	if err := custoQuery().
		Where("custos.usuario_id = ? AND custos.data_pagamento >= ? AND custos.data_pagamento <= ?", userID, inicio, fim).
		Order("custos.data_pagamento DESC").
		Scan(&custos).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Erro ao consultar custos"))
		return
	}

	buf := new(bytes.Buffer)
	// BOM 保证 Excel 正确识别 UTF-8
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)

	headers := []string{"ID", "Descrição", "Valor", "Data de Pagamento", "Tema", "Tipo", "Comentário"}
	if err := writer.Write(headers); err != nil {
		InternalError(c, "Erro ao gerar o CSV")
		return
	}

	for _, custo := range custos {
		row := []string{
			fmt.Sprintf("%d", custo.ID),
			custo.Descricao,
			fmt.Sprintf("%.2f", custo.Valor),
			custo.DataPagamento.Format("2006-01-02"),
			custo.TemaCustoNome,
			custo.Tipo,
			custo.Comentario,
		}
		if err := writer.Write(row); err != nil {
			InternalError(c, "Erro ao gerar o CSV")
			return
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "Erro ao gerar o CSV")
		return
	}

	filename := fmt.Sprintf("custos_%s_%s.csv", inicioStr, fimStr)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))

	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
