package api

import (
	"errors"
	"time"

	"consec/config"
	"consec/database"
	"consec/middleware"
	"consec/models"

	"github.com/gin-gonic/gin"
)

// SaldoHandler 余额处理器（仅管理者）
type SaldoHandler struct {
	cfg *config.Config
}

// NewSaldoHandler 创建余额处理器
func NewSaldoHandler(cfg *config.Config) *SaldoHandler {
	return &SaldoHandler{cfg: cfg}
}

// CreateSaldoRequest 创建余额请求（JSON 或 multipart 表单）
type CreateSaldoRequest struct {
	Descricao   string  `json:"descricao" form:"descricao" binding:"required,max=255" example:"Aporte mensal"`
	Valor       float64 `json:"valor" form:"valor" binding:"required,gt=0" example:"1000"`
	DataEntrada string  `json:"dataEntrada" form:"dataEntrada" binding:"required" example:"2024-03-01"`
}

// UpdateSaldoRequest 更新余额请求（字段可选，留空不变）
type UpdateSaldoRequest struct {
	Descricao   string   `json:"descricao" form:"descricao" binding:"omitempty,max=255"`
	Valor       *float64 `json:"valor" form:"valor" binding:"omitempty,gt=0"`
	DataEntrada string   `json:"dataEntrada" form:"dataEntrada" binding:"omitempty"`
}

// SaldoResponse 余额响应
type SaldoResponse struct {
	ID               uint      `json:"id"`
	Descricao        string    `json:"descricao"`
	Valor            float64   `json:"valor"`
	DataEntrada      time.Time `json:"dataEntrada"`
	ArquivoAnexoPath string    `json:"arquivoAnexoPath"`
	UsuarioID        uint      `json:"usuarioId"`
	UsuarioNome      string    `json:"usuarioNome"`
}

// SaldoTotalResponse 余额合计响应
type SaldoTotalResponse struct {
	Total float64 `json:"total"`
}

// List 获取余额列表
// @Summary 获取余额列表
// @Description 可按 dataInicio/dataFim 过滤登记日期，按登记日期倒序。
// @Tags 余额
// @Produce json
// @Security BearerAuth
// @Param dataInicio query string false "起始日期 2006-01-02"
// @Param dataFim query string false "结束日期 2006-01-02"
// @Success 200 {array} SaldoResponse "获取成功"
// @Failure 403 {object} ErrorResponse "仅管理者"
// @Router /api/saldo [get]
func (h *SaldoHandler) List(c *gin.Context) {
	query := database.DB.Model(&models.Balance{}).
		Select("saldos.id, saldos.descricao, saldos.valor, saldos.data_entrada, saldos.arquivo_anexo_path, saldos.usuario_id, usuarios.nome AS usuario_nome").
		Joins("JOIN usuarios ON usuarios.id = saldos.usuario_id")

	if inicio := c.Query("dataInicio"); inicio != "" {
		t, err := parseData(inicio)
		if err != nil {
			BadRequest(c, "Data inicial inválida, use o formato 2006-01-02")
			return
		}
		query = query.Where("saldos.data_entrada >= ?", t)
	}
	if fim := c.Query("dataFim"); fim != "" {
		t, err := parseData(fim)
		if err != nil {
			BadRequest(c, "Data final inválida, use o formato 2006-01-02")
			return
		}
		// 结束日期取当天整天
		query = query.Where("saldos.data_entrada < ?", t.AddDate(0, 0, 1))
	}

	var saldos []SaldoResponse
	if err := query.Order("saldos.data_entrada DESC").Scan(&saldos).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Erro ao consultar saldos"))
		return
	}
	if saldos == nil {
		saldos = []SaldoResponse{}
	}
	Success(c, saldos)
}

// Get 获取单条余额
// @Summary 获取余额详情
// @Tags 余额
// @Produce json
// @Security BearerAuth
// @Param id path int true "余额ID"
// @Success 200 {object} SaldoResponse "获取成功"
// @Failure 404 {object} ErrorResponse "记录不存在"
// @Router /api/saldo/{id} [get]
func (h *SaldoHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		BadRequest(c, "ID inválido")
		return
	}

	var saldo SaldoResponse
	result := database.DB.Model(&models.Balance{}).
		Select("saldos.id, saldos.descricao, saldos.valor, saldos.data_entrada, saldos.arquivo_anexo_path, saldos.usuario_id, usuarios.nome AS usuario_nome").
		Joins("JOIN usuarios ON usuarios.id = saldos.usuario_id").
		Where("saldos.id = ?", id).
		Scan(&saldo)
	if result.Error != nil || result.RowsAffected == 0 {
		NotFound(c, "Saldo não encontrado")
		return
	}
	Success(c, saldo)
}

// Create 创建余额
// @Summary 登记余额
// @Description 登记一笔余额。multipart 表单可携带凭证文件 arquivoAnexo（≤5MB，pdf/jpg/jpeg/png）。
// @Tags 余额
// @Accept json
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param request body CreateSaldoRequest true "余额信息"
// @Success 201 {object} SaldoResponse "创建成功"
// @Failure 400 {object} ErrorResponse "参数错误或文件不合规"
// @Router /api/saldo [post]
func (h *SaldoHandler) Create(c *gin.Context) {
	var req CreateSaldoRequest
	if err := c.ShouldBind(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Dados do saldo inválidos"))
		return
	}

	dataEntrada, err := parseData(req.DataEntrada)
	if err != nil {
		BadRequest(c, "Data de entrada inválida, use o formato 2006-01-02")
		return
	}

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

	userID := middleware.GetCurrentUserID(c)
	saldo := models.Balance{
		Descricao:        req.Descricao,
		Valor:            req.Valor,
		DataEntrada:      dataEntrada,
		ArquivoAnexoPath: arquivoPath,
		UsuarioID:        userID,
	}

	if err := database.DB.Create(&saldo).Error; err != nil {
		_ = RemoveReceipt(arquivoPath, &h.cfg.Upload)
		InternalError(c, SafeErrorMessage(err, "Erro ao registrar saldo"))
		return
	}

	var usuario models.User
	database.DB.First(&usuario, userID)

	Created(c, SaldoResponse{
		ID:               saldo.ID,
		Descricao:        saldo.Descricao,
		Valor:            saldo.Valor,
		DataEntrada:      saldo.DataEntrada,
		ArquivoAnexoPath: saldo.ArquivoAnexoPath,
		UsuarioID:        saldo.UsuarioID,
		UsuarioNome:      usuario.Nome,
	})
}

// Update 更新余额
// @Summary 更新余额
// @Description 部分更新：仅更新提供的字段。上传新凭证时替换并删除旧文件。
// @Tags 余额
// @Accept json
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "余额ID"
// @Param request body UpdateSaldoRequest true "余额信息"
// @Success 204 "更新成功"
// @Failure 400 {object} ErrorResponse "参数错误或文件不合规"
// @Failure 404 {object} ErrorResponse "记录不存在"
// @Router /api/saldo/{id} [put]
func (h *SaldoHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		BadRequest(c, "ID inválido")
		return
	}

	var saldo models.Balance
	if err := database.DB.First(&saldo, id).Error; err != nil {
		NotFound(c, "Saldo não encontrado")
		return
	}

	var req UpdateSaldoRequest
	if err := c.ShouldBind(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Dados do saldo inválidos"))
		return
	}

	updates := map[string]interface{}{}
	if req.Descricao != "" {
		updates["descricao"] = req.Descricao
	}
	if req.Valor != nil {
		updates["valor"] = *req.Valor
	}
	if req.DataEntrada != "" {
		t, err := parseData(req.DataEntrada)
		if err != nil {
			BadRequest(c, "Data de entrada inválida, use o formato 2006-01-02")
			return
		}
		updates["data_entrada"] = t
	}

	// 新凭证替换旧凭证
	oldPath := ""
	if file, ferr := c.FormFile("arquivoAnexo"); ferr == nil && file != nil {
		newPath, err := SaveReceipt(c, file, &h.cfg.Upload)
		if err != nil {
			if errors.Is(err, ErrFileTooLarge) || errors.Is(err, ErrUnsupportedFileType) {
				BadRequest(c, err.Error())
			} else {
				InternalError(c, SafeErrorMessage(err, "Erro ao salvar o arquivo"))
			}
			return
		}
		oldPath = saldo.ArquivoAnexoPath
		updates["arquivo_anexo_path"] = newPath
	}

	if len(updates) == 0 {
		NoContent(c)
		return
	}

	if err := database.DB.Model(&saldo).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Erro ao atualizar saldo"))
		return
	}

	if oldPath != "" {
		_ = RemoveReceipt(oldPath, &h.cfg.Upload)
	}

	NoContent(c)
}

// Delete 删除余额
// @Summary 删除余额
// @Description 删除余额记录，并尽力删除其凭证文件。
// @Tags 余额
// @Produce json
// @Security BearerAuth
// @Param id path int true "余额ID"
// @Success 204 "删除成功"
// @Failure 404 {object} ErrorResponse "记录不存在"
// @Router /api/saldo/{id} [delete]
func (h *SaldoHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		BadRequest(c, "ID inválido")
		return
	}

	var saldo models.Balance
	if err := database.DB.First(&saldo, id).Error; err != nil {
		NotFound(c, "Saldo não encontrado")
		return
	}

	_ = RemoveReceipt(saldo.ArquivoAnexoPath, &h.cfg.Upload)

	if err := database.DB.Delete(&saldo).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Erro ao excluir saldo"))
		return
	}

	NoContent(c)
}

// Total 获取余额合计
// @Summary 获取余额合计
// @Description 返回登记日期窗口内余额的合计值，窗口可选；无记录时为 0。
// @Tags 余额
// @Produce json
// @Security BearerAuth
// @Param dataInicio query string false "起始日期 2006-01-02"
// @Param dataFim query string false "结束日期 2006-01-02"
// @Success 200 {object} SaldoTotalResponse "获取成功"
// @Router /api/saldo/total [get]
func (h *SaldoHandler) Total(c *gin.Context) {
	query := database.DB.Model(&models.Balance{})

	if inicio := c.Query("dataInicio"); inicio != "" {
		t, err := parseData(inicio)
		if err != nil {
			BadRequest(c, "Data inicial inválida, use o formato 2006-01-02")
			return
		}
		query = query.Where("data_entrada >= ?", t)
	}
	if fim := c.Query("dataFim"); fim != "" {
		t, err := parseData(fim)
		if err != nil {
			BadRequest(c, "Data final inválida, use o formato 2006-01-02")
			return
		}
		query = query.Where("data_entrada < ?", t.AddDate(0, 0, 1))
	}

	var total float64
	if err := query.Select("COALESCE(SUM(valor), 0)").Scan(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Erro ao calcular o total de saldos"))
		return
	}
	Success(c, SaldoTotalResponse{Total: total})
}

// DownloadComprovante 下载余额凭证
// @Summary 下载余额凭证
// @Tags 余额
// @Produce octet-stream
// @Security BearerAuth
// @Param id path int true "余额ID"
// @Success 200 {file} file "凭证文件"
// @Failure 404 {object} ErrorResponse "凭证不存在"
// @Router /api/saldo/comprovante/{id} [get]
func (h *SaldoHandler) DownloadComprovante(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		BadRequest(c, "ID inválido")
		return
	}

	var saldo models.Balance
	if err := database.DB.First(&saldo, id).Error; err != nil {
		NotFound(c, "Saldo não encontrado")
		return
	}

	serveReceipt(c, saldo.ArquivoAnexoPath, &h.cfg.Upload)
}
