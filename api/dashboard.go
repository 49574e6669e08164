package api

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"consec/database"
	"consec/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// DashboardHandler 管理者看板处理器
type DashboardHandler struct{}

// NewDashboardHandler 创建看板处理器
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// ResumoPorTema 按主题汇总
type ResumoPorTema struct {
	TemaNome   string  `json:"temaNome"`
	TemaCor    string  `json:"temaCor"`
	Total      float64 `json:"total"`
	Quantidade int64   `json:"quantidade"`
}

// ResumoPorUsuario 按员工汇总
type ResumoPorUsuario struct {
	UsuarioNome string  `json:"usuarioNome"`
	Total       float64 `json:"total"`
	Quantidade  int64   `json:"quantidade"`
}

// ResumoPorMes 按月汇总，mes 格式 MM/YYYY
type ResumoPorMes struct {
	Mes        string  `json:"mes"`
	Total      float64 `json:"total"`
	Quantidade int64   `json:"quantidade"`
}

// ResumoResponse 看板汇总响应
type ResumoResponse struct {
	TotalGeral      float64            `json:"totalGeral"`
	QuantidadeTotal int64              `json:"quantidadeTotal"`
	PorTema         []ResumoPorTema    `json:"porTema"`
	PorUsuario      []ResumoPorUsuario `json:"porUsuario"`
	PorMes          []ResumoPorMes     `json:"porMes"`
}

// DisponibilidadeResponse 月度可用余额响应
type DisponibilidadeResponse struct {
	SaldoTotal float64 `json:"saldoTotal"`
	CustoTotal float64 `json:"custoTotal"`
	Disponivel float64 `json:"disponivel"`
	Status     string  `json:"status"`
}

// Availability 根据余额与支出合计计算可用额与状态。
// 状态规则：可用额为负是 negative；非负但不超过支出的 10% 是 warning；其余 positive。
func Availability(saldoTotal, custoTotal float64) DisponibilidadeResponse {
	disponivel := saldoTotal - custoTotal
	status := "positive"
	switch {
	case disponivel < 0:
		status = "negative"
	case disponivel <= 0.10*custoTotal:
		status = "warning"
	}
	return DisponibilidadeResponse{
		SaldoTotal: saldoTotal,
		CustoTotal: custoTotal,
		Disponivel: disponivel,
		Status:     status,
	}
}

// filteredQuery 按 dataInicio/dataFim/temaCustoId/usuarioId 过滤的支出查询基底
func (h *DashboardHandler) filteredQuery(c *gin.Context) (*gorm.DB, error) {
	query := database.DB.Model(&models.Expense{})

	if inicio := c.Query("dataInicio"); inicio != "" {
		t, err := parseData(inicio)
		if err != nil {
			return nil, fmt.Errorf("data inicial inválida")
		}
		query = query.Where("custos.data_pagamento >= ?", t)
	}
	if fim := c.Query("dataFim"); fim != "" {
		t, err := parseData(fim)
		if err != nil {
			return nil, fmt.Errorf("data final inválida")
		}
		query = query.Where("custos.data_pagamento < ?", t.AddDate(0, 0, 1))
	}
	if tema := c.Query("temaCustoId"); tema != "" {
		id, err := strconv.ParseUint(tema, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("temaCustoId inválido")
		}
		query = query.Where("custos.tema_custo_id = ?", id)
	}
	if usuario := c.Query("usuarioId"); usuario != "" {
		id, err := strconv.ParseUint(usuario, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("usuarioId inválido")
		}
		query = query.Where("custos.usuario_id = ?", id)
	}

	return query, nil
}

// Resumo 看板汇总
// @Summary 支出汇总
// @Description 按主题、员工、月份汇总支出。过滤条件为交集；无匹配记录时返回零值与空列表。
// @Tags 看板
// @Produce json
// @Security BearerAuth
// @Param dataInicio query string false "起始日期 2006-01-02"
// @Param dataFim query string false "结束日期 2006-01-02"
// @Param temaCustoId query int false "主题ID"
// @Param usuarioId query int false "员工ID"
// @Success 200 {object} ResumoResponse "获取成功"
// @Failure 403 {object} ErrorResponse "仅管理者"
// @Router /api/dashboard/resumo [get]
func (h *DashboardHandler) Resumo(c *gin.Context) {
	base, err := h.filteredQuery(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	resp := ResumoResponse{
		PorTema:    []ResumoPorTema{},
		PorUsuario: []ResumoPorUsuario{},
		PorMes:     []ResumoPorMes{},
	}

	if err := base.Session(&gorm.Session{}).
		Select("COALESCE(SUM(valor), 0)").Scan(&resp.TotalGeral).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Erro ao calcular o resumo"))
		return
	}
	base.Session(&gorm.Session{}).Count(&resp.QuantidadeTotal)

	base.Session(&gorm.Session{}).
		Select("temas_custo.nome AS tema_nome, temas_custo.cor AS tema_cor, COALESCE(SUM(custos.valor), 0) AS total, COUNT(*) AS quantidade").
		Joins("JOIN temas_custo ON temas_custo.id = custos.tema_custo_id").
		Group("temas_custo.id, temas_custo.nome, temas_custo.cor").
		Order("total DESC").
		Scan(&resp.PorTema)

	base.Session(&gorm.Session{}).
		Select("usuarios.nome AS usuario_nome, COALESCE(SUM(custos.valor), 0) AS total, COUNT(*) AS quantidade").
		Joins("JOIN usuarios ON usuarios.id = custos.usuario_id").
		Group("usuarios.id, usuarios.nome").
		Order("total DESC").
		Scan(&resp.PorUsuario)

	// 按月汇总：先按年月聚合，再格式化为 MM/YYYY 并按时间排序
	type mesRow struct {
		Ano        int
		Mes        int
		Total      float64
		Quantidade int64
	}
	var meses []mesRow
	base.Session(&gorm.Session{}).
		Select("YEAR(data_pagamento) AS ano, MONTH(data_pagamento) AS mes, COALESCE(SUM(valor), 0) AS total, COUNT(*) AS quantidade").
		Group("YEAR(data_pagamento), MONTH(data_pagamento)").
		Scan(&meses)
	sort.Slice(meses, func(i, j int) bool {
		if meses[i].Ano != meses[j].Ano {
			return meses[i].Ano < meses[j].Ano
		}
		return meses[i].Mes < meses[j].Mes
	})
	for _, m := range meses {
		resp.PorMes = append(resp.PorMes, ResumoPorMes{
			Mes:        fmt.Sprintf("%02d/%04d", m.Mes, m.Ano),
			Total:      m.Total,
			Quantidade: m.Quantidade,
		})
	}

	Success(c, resp)
}

// Custos 过滤后的支出明细
// @Summary 支出明细
// @Description 按看板过滤条件返回全部支出明细，支付日期倒序。
// @Tags 看板
// @Produce json
// @Security BearerAuth
// @Param dataInicio query string false "起始日期 2006-01-02"
// @Param dataFim query string false "结束日期 2006-01-02"
// @Param temaCustoId query int false "主题ID"
// @Param usuarioId query int false "员工ID"
// @Success 200 {array} CustoResponse "获取成功"
// @Failure 403 {object} ErrorResponse "仅管理者"
// @Router /api/dashboard/custos [get]
func (h *DashboardHandler) Custos(c *gin.Context) {
	base, err := h.filteredQuery(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	var custos []CustoResponse
	if err := base.
		Select("custos.id, custos.descricao, custos.valor, custos.data_pagamento, custos.tipo, custos.comentario, custos.arquivo_anexo_path, custos.tema_custo_id, temas_custo.nome AS tema_custo_nome, temas_custo.cor AS tema_custo_cor, custos.usuario_id, usuarios.nome AS usuario_nome, usuarios.email AS usuario_email").
		Joins("JOIN temas_custo ON temas_custo.id = custos.tema_custo_id").
		Joins("JOIN usuarios ON usuarios.id = custos.usuario_id").
		Order("custos.data_pagamento DESC").
		Scan(&custos).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Erro ao consultar custos"))
		return
	}
	if custos == nil {
		custos = []CustoResponse{}
	}
	Success(c, custos)
}

// Disponibilidade 月度可用余额
// @Summary 月度可用余额
// @Description 可用额 = 当年余额合计 − 当月支出合计。status: negative/warning/positive。
// @Tags 看板
// @Produce json
// @Security BearerAuth
// @Param ano query int true "年份，例如 2024"
// @Param mes query int true "月份 1-12"
// @Success 200 {object} DisponibilidadeResponse "获取成功"
// @Failure 400 {object} ErrorResponse "参数错误"
// @Router /api/dashboard/disponibilidade [get]
func (h *DashboardHandler) Disponibilidade(c *gin.Context) {
	ano, err := strconv.Atoi(c.Query("ano"))
	if err != nil || ano < 1 {
		BadRequest(c, "Ano inválido")
		return
	}
	mes, err := strconv.Atoi(c.Query("mes"))
	if err != nil || mes < 1 || mes > 12 {
		BadRequest(c, "Mês inválido, use 1 a 12")
		return
	}

	inicioAno := time.Date(ano, time.January, 1, 0, 0, 0, 0, time.Local)
	fimAno := inicioAno.AddDate(1, 0, 0)
	inicioMes := time.Date(ano, time.Month(mes), 1, 0, 0, 0, 0, time.Local)
	fimMes := inicioMes.AddDate(0, 1, 0)

	var saldoTotal float64
	if err := database.DB.Model(&models.Balance{}).
		Where("data_entrada >= ? AND data_entrada < ?", inicioAno, fimAno).
		Select("COALESCE(SUM(valor), 0)").Scan(&saldoTotal).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Erro ao calcular saldos"))
		return
	}

	var custoTotal float64
	if err := database.DB.Model(&models.Expense{}).
		Where("data_pagamento >= ? AND data_pagamento < ?", inicioMes, fimMes).
		Select("COALESCE(SUM(valor), 0)").Scan(&custoTotal).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Erro ao calcular custos"))
		return
	}

	Success(c, Availability(saldoTotal, custoTotal))
}

// Exportar 导出过滤后的支出为 Excel
// @Summary 导出支出 Excel
// @Description 按看板过滤条件导出支出明细为 xlsx 文件，末行为合计。
// @Tags 看板
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param dataInicio query string false "起始日期 2006-01-02"
// @Param dataFim query string false "结束日期 2006-01-02"
// @Param temaCustoId query int false "主题ID"
// @Param usuarioId query int false "员工ID"
// @Success 200 {file} file "Excel 文件"
// @Failure 403 {object} ErrorResponse "仅管理者"
// @Router /api/dashboard/exportar [get]
func (h *DashboardHandler) Exportar(c *gin.Context) {
	base, err := h.filteredQuery(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	var custos []CustoResponse
	base.
		Select("custos.id, custos.descricao, custos.valor, custos.data_pagamento, custos.tipo, custos.comentario, custos.arquivo_anexo_path, custos.tema_custo_id, temas_custo.nome AS tema_custo_nome, temas_custo.cor AS tema_custo_cor, custos.usuario_id, usuarios.nome AS usuario_nome, usuarios.email AS usuario_email").
		Joins("JOIN temas_custo ON temas_custo.id = custos.tema_custo_id").
		Joins("JOIN usuarios ON usuarios.id = custos.usuario_id").
		Order("custos.data_pagamento DESC").
		Scan(&custos)

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Custos"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	f.SetColWidth(sheetName, "A", "A", 10)
	f.SetColWidth(sheetName, "B", "B", 30)
	f.SetColWidth(sheetName, "C", "C", 12)
	f.SetColWidth(sheetName, "D", "D", 15)
	f.SetColWidth(sheetName, "E", "E", 20)
	f.SetColWidth(sheetName, "F", "F", 20)
	f.SetColWidth(sheetName, "G", "G", 12)

	headers := []string{"ID", "Descrição", "Valor", "Data", "Tema", "Funcionário", "Tipo"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	var total float64
	for i, custo := range custos {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), custo.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), custo.Descricao)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), custo.Valor)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), custo.DataPagamento.Format("2006-01-02"))
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), custo.TemaCustoNome)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), custo.UsuarioNome)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), custo.Tipo)
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("G%d", row), dataStyle)
		total += custo.Valor
	}

	summaryRow := len(custos) + 2
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow), "Total")
	f.MergeCell(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("B%d", summaryRow))
	f.SetCellValue(sheetName, fmt.Sprintf("C%d", summaryRow), total)
	f.SetCellValue(sheetName, fmt.Sprintf("D%d", summaryRow), fmt.Sprintf("%d registros", len(custos)))
	f.MergeCell(sheetName, fmt.Sprintf("D%d", summaryRow), fmt.Sprintf("G%d", summaryRow))
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("G%d", summaryRow), summaryStyle)

	filename := fmt.Sprintf("custos_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", filename))

	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: http.StatusInternalServerError, Message: "Erro ao gerar o arquivo Excel"})
		return
	}
}
