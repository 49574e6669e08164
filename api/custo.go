package api

import (
	"errors"
	"strconv"
	"time"

	"consec/config"
	"consec/database"
	"consec/middleware"
	"consec/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CustoHandler 支出记录处理器
type CustoHandler struct {
	cfg *config.Config
}

// NewCustoHandler 创建支出记录处理器
func NewCustoHandler(cfg *config.Config) *CustoHandler {
	return &CustoHandler{cfg: cfg}
}

// CreateCustoRequest 创建支出请求（JSON 或 multipart 表单）
type CreateCustoRequest struct {
	Descricao     string  `json:"descricao" form:"descricao" binding:"required,max=255" example:"Almoço com cliente"`
	Valor         float64 `json:"valor" form:"valor" binding:"required,gt=0" example:"25.50"`
	DataPagamento string  `json:"dataPagamento" form:"dataPagamento" binding:"required" example:"2024-03-01"`
	TemaCustoID   uint    `json:"temaCustoId" form:"temaCustoId" binding:"required" example:"1"`
	Tipo          string  `json:"tipo" form:"tipo" binding:"omitempty,max=50" example:"unico"`
	Comentario    string  `json:"comentario" form:"comentario" binding:"omitempty,max=500"`
}

// UpdateCustoRequest 更新支出请求
type UpdateCustoRequest struct {
	Descricao     string  `json:"descricao" binding:"required,max=255"`
	Valor         float64 `json:"valor" binding:"required,gt=0"`
	DataPagamento string  `json:"dataPagamento" binding:"required"`
	TemaCustoID   uint    `json:"temaCustoId" binding:"required"`
	Tipo          string  `json:"tipo" binding:"omitempty,max=50"`
	Comentario    string  `json:"comentario" binding:"omitempty,max=500"`
}

// CustoResponse 支出响应，附带主题与所有者信息
type CustoResponse struct {
	ID               uint      `json:"id"`
	Descricao        string    `json:"descricao"`
	Valor            float64   `json:"valor"`
	DataPagamento    time.Time `json:"dataPagamento"`
	Tipo             string    `json:"tipo"`
	Comentario       string    `json:"comentario"`
	ArquivoAnexoPath string    `json:"arquivoAnexoPath"`
	TemaCustoID      uint      `json:"temaCustoId"`
	TemaCustoNome    string    `json:"temaCustoNome"`
	TemaCustoCor     string    `json:"temaCustoCor"`
	UsuarioID        uint      `json:"usuarioId"`
	UsuarioNome      string    `json:"usuarioNome"`
	UsuarioEmail     string    `json:"usuarioEmail"`
}

// custoQuery 支出 + 主题/用户关联字段的查询基底
func custoQuery() *gorm.DB {
	return database.DB.Model(&models.Expense{}).
		Select("custos.id, custos.descricao, custos.valor, custos.data_pagamento, custos.tipo, custos.comentario, custos.arquivo_anexo_path, custos.tema_custo_id, temas_custo.nome AS tema_custo_nome, temas_custo.cor AS tema_custo_cor, custos.usuario_id, usuarios.nome AS usuario_nome, usuarios.email AS usuario_email").
		Joins("JOIN temas_custo ON temas_custo.id = custos.tema_custo_id").
		Joins("JOIN usuarios ON usuarios.id = custos.usuario_id")
}

// ListMine 获取当前用户的支出列表
// @Summary 获取我的支出
// @Description 返回当前登录用户的全部支出，按支付日期倒序
// @Tags 支出
// @Produce json
// @Security BearerAuth
// @Success 200 {array} CustoResponse "获取成功"
// @Failure 401 {object} ErrorResponse "未授权"
// @Router /api/custo [get]
func (h *CustoHandler) ListMine(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var custos []CustoResponse
	if err := custoQuery().
		Where("custos.usuario_id = ?", userID).
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

// Get 获取单条支出
// @Summary 获取支出详情
// @Description 员工只能查看自己的支出，管理者可查看任意支出
// @Tags 支出
// @Produce json
// @Security BearerAuth
// @Param id path int true "支出ID"
// @Success 200 {object} CustoResponse "获取成功"
// @Failure 403 {object} ErrorResponse "无权查看"
// @Failure 404 {object} ErrorResponse "记录不存在"
// @Router /api/custo/{id} [get]
func (h *CustoHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		BadRequest(c, "ID inválido")
		return
	}

	var custo CustoResponse
	result := custoQuery().Where("custos.id = ?", id).Scan(&custo)
	if result.Error != nil || result.RowsAffected == 0 {
		NotFound(c, "Custo não encontrado")
		return
	}

	// 员工只能查看自己的支出
	if !middleware.IsGestor(c) && custo.UsuarioID != middleware.GetCurrentUserID(c) {
		Forbidden(c, "Você não tem permissão para acessar este custo")
		return
	}

	Success(c, custo)
}

// Create 创建支出
// @Summary 创建支出
// @Description 创建一条支出记录。multipart 表单可携带凭证文件 arquivoAnexo（≤5MB，pdf/jpg/jpeg/png）。
// @Tags 支出
// @Accept json
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param request body CreateCustoRequest true "支出信息"
// @Success 201 {object} CustoResponse "创建成功"
// @Failure 400 {object} ErrorResponse "参数错误、主题不存在或文件不合规"
// @Failure 401 {object} ErrorResponse "未授权"
// @Router /api/custo [post]
func (h *CustoHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateCustoRequest
	if err := c.ShouldBind(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Dados do custo inválidos"))
		return
	}

	dataPagamento, err := parseData(req.DataPagamento)
	if err != nil {
		BadRequest(c, "Data de pagamento inválida, use o formato 2006-01-02")
		return
	}

	// 主题必须存在
	var tema models.CostTheme
	if err := database.DB.First(&tema, req.TemaCustoID).Error; err != nil {
		BadRequest(c, "Tema de custo não encontrado")
		return
	}

	// 凭证文件（可选，仅 multipart）
	arquivoPath := ""
	if file, ferr := c.FormFile("arquivoAnexo"); ferr == nil && file != nil {
		arquivoPath, err = SaveReceipt(c, file, &h.cfg.Upload)
		if err != nil {
			if errors.Is(err, ErrFileTooLarge) || errors.Is(err, ErrUnsupportedFileType) {
				BadRequest(c, err.Error())
			} else {
				InternalError(c, SafeErrorMessage(err, "Erro ao salvar o arquivo"))
			}
			return
		}
	}

	tipo := req.Tipo
	if tipo == "" {
		tipo = models.TipoUnico
	}

	custo := models.Expense{
		Descricao:        req.Descricao,
		Valor:            req.Valor,
		DataPagamento:    dataPagamento,
		Tipo:             tipo,
		Comentario:       req.Comentario,
		ArquivoAnexoPath: arquivoPath,
		TemaCustoID:      req.TemaCustoID,
		UsuarioID:        userID,
	}

	if err := database.DB.Create(&custo).Error; err != nil {
		// 行写入失败时清理刚保存的文件，避免孤儿文件
		_ = RemoveReceipt(arquivoPath, &h.cfg.Upload)
		InternalError(c, SafeErrorMessage(err, "Erro ao criar custo"))
		return
	}

	var usuario models.User
	database.DB.First(&usuario, userID)

	Created(c, CustoResponse{
		ID:               custo.ID,
		Descricao:        custo.Descricao,
		Valor:            custo.Valor,
		DataPagamento:    custo.DataPagamento,
		Tipo:             custo.Tipo,
		Comentario:       custo.Comentario,
		ArquivoAnexoPath: custo.ArquivoAnexoPath,
		TemaCustoID:      custo.TemaCustoID,
		TemaCustoNome:    tema.Nome,
		TemaCustoCor:     tema.Cor,
		UsuarioID:        custo.UsuarioID,
		UsuarioNome:      usuario.Nome,
		UsuarioEmail:     usuario.Email,
	})
}

// Update 更新支出
// @Summary 更新支出
// @Description 覆盖描述/金额/日期/类型/备注/主题。员工只能更新自己的支出，管理者不受限制。
// @Tags 支出
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "支出ID"
// @Param request body UpdateCustoRequest true "支出信息"
// @Success 204 "更新成功"
// @Failure 400 {object} ErrorResponse "参数错误或主题不存在"
// @Failure 403 {object} ErrorResponse "无权更新"
// @Failure 404 {object} ErrorResponse "记录不存在"
// @Router /api/custo/{id} [put]
func (h *CustoHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		BadRequest(c, "ID inválido")
		return
	}

	var custo models.Expense
	if err := database.DB.First(&custo, id).Error; err != nil {
		NotFound(c, "Custo não encontrado")
		return
	}

	if !middleware.IsGestor(c) && custo.UsuarioID != middleware.GetCurrentUserID(c) {
		Forbidden(c, "Você não tem permissão para alterar este custo")
		return
	}

	var req UpdateCustoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Dados do custo inválidos"))
		return
	}

	dataPagamento, err := parseData(req.DataPagamento)
	if err != nil {
		BadRequest(c, "Data de pagamento inválida, use o formato 2006-01-02")
		return
	}

	var tema models.CostTheme
	if err := database.DB.First(&tema, req.TemaCustoID).Error; err != nil {
		BadRequest(c, "Tema de custo não encontrado")
		return
	}

	updates := map[string]interface{}{
		"descricao":      req.Descricao,
		"valor":          req.Valor,
		"data_pagamento": dataPagamento,
		"tipo":           req.Tipo,
		"comentario":     req.Comentario,
		"tema_custo_id":  req.TemaCustoID,
	}
	if req.Tipo == "" {
		updates["tipo"] = custo.Tipo
	}

	if err := database.DB.Model(&custo).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Erro ao atualizar custo"))
		return
	}

	NoContent(c)
}

// Delete 删除支出
// @Summary 删除支出
// @Description 删除支出记录，并尽力删除其凭证文件。员工只能删除自己的支出。
// @Tags 支出
// @Produce json
// @Security BearerAuth
// @Param id path int true "支出ID"
// @Success 204 "删除成功"
// @Failure 403 {object} ErrorResponse "无权删除"
// @Failure 404 {object} ErrorResponse "记录不存在"
// @Router /api/custo/{id} [delete]
func (h *CustoHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		BadRequest(c, "ID inválido")
		return
	}

	var custo models.Expense
	if err := database.DB.First(&custo, id).Error; err != nil {
		NotFound(c, "Custo não encontrado")
		return
	}

	if !middleware.IsGestor(c) && custo.UsuarioID != middleware.GetCurrentUserID(c) {
		Forbidden(c, "Você não tem permissão para excluir este custo")
		return
	}

	// 先尽力删文件再删行；文件删除失败不阻塞行删除
	_ = RemoveReceipt(custo.ArquivoAnexoPath, &h.cfg.Upload)

	if err := database.DB.Delete(&custo).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Erro ao excluir custo"))
		return
	}

	NoContent(c)
}

// DownloadComprovante 下载支出凭证
// @Summary 下载支出凭证
// @Description 流式返回凭证文件。员工只能下载自己支出的凭证。
// @Tags 支出
// @Produce octet-stream
// @Security BearerAuth
// @Param id path int true "支出ID"
// @Success 200 {file} file "凭证文件"
// @Failure 403 {object} ErrorResponse "无权下载"
// @Failure 404 {object} ErrorResponse "凭证不存在"
// @Router /api/custo/comprovante/{id} [get]
func (h *CustoHandler) DownloadComprovante(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		BadRequest(c, "ID inválido")
		return
	}

	var custo models.Expense
	if err := database.DB.First(&custo, id).Error; err != nil {
		NotFound(c, "Custo não encontrado")
		return
	}

	if !middleware.IsGestor(c) && custo.UsuarioID != middleware.GetCurrentUserID(c) {
		Forbidden(c, "Você não tem permissão para acessar este comprovante")
		return
	}

	serveReceipt(c, custo.ArquivoAnexoPath, &h.cfg.Upload)
}

// parseID 解析路径中的数字 ID
func parseID(c *gin.Context) (uint, error) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id64), nil
}

// parseData 解析日期参数，接受 2006-01-02 与 RFC3339 两种格式
func parseData(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02 15:04:05", s, time.Local)
}
