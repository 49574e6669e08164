package api

import (
	"strings"

	"consec/database"
	"consec/middleware"
	"consec/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TemaCustoHandler 支出主题处理器
type TemaCustoHandler struct{}

// NewTemaCustoHandler 创建支出主题处理器
func NewTemaCustoHandler() *TemaCustoHandler {
	return &TemaCustoHandler{}
}

// CreateTemaCustoRequest 创建主题请求
type CreateTemaCustoRequest struct {
	Nome       string `json:"nome" binding:"required,max=100" example:"Alimentação"`
	Descricao  string `json:"descricao" binding:"omitempty,max=500"`
	Cor        string `json:"cor" binding:"omitempty,max=7" example:"#FF5733"`
	Icone      string `json:"icone" binding:"omitempty,max=50" example:"restaurant"`
	UsuarioIDs []uint `json:"usuarioIds" binding:"required"`
}

// UpdateTemaCustoRequest 更新主题请求
// UsuarioIDs 为 nil 时保留现有关联；非 nil 时整组替换。
type UpdateTemaCustoRequest struct {
	Nome       string  `json:"nome" binding:"required,max=100"`
	Descricao  string  `json:"descricao" binding:"omitempty,max=500"`
	Cor        string  `json:"cor" binding:"omitempty,max=7"`
	Icone      string  `json:"icone" binding:"omitempty,max=50"`
	UsuarioIDs *[]uint `json:"usuarioIds"`
}

// UsuarioResumo 主题响应中的用户摘要
type UsuarioResumo struct {
	ID    uint   `json:"id"`
	Nome  string `json:"nome"`
	Email string `json:"email"`
}

// TemaCustoResponse 主题响应
type TemaCustoResponse struct {
	ID          uint            `json:"id"`
	Nome        string          `json:"nome"`
	Descricao   string          `json:"descricao"`
	Cor         string          `json:"cor"`
	Icone       string          `json:"icone"`
	TotalCustos int64           `json:"totalCustos"`
	ValorTotal  float64         `json:"valorTotal"`
	Usuarios    []UsuarioResumo `json:"usuarios"`
}

// List 获取主题列表
// @Summary 获取支出主题列表
// @Description 管理者看到全部主题（含关联员工与汇总）；员工只看到与自己关联的主题。
// @Tags 支出主题
// @Produce json
// @Security BearerAuth
// @Success 200 {array} TemaCustoResponse "获取成功"
// @Failure 401 {object} ErrorResponse "未授权"
// @Router /api/temacusto [get]
func (h *TemaCustoHandler) List(c *gin.Context) {
	query := database.DB.Model(&models.CostTheme{})

	// 员工只看到与自己关联的主题
	if !middleware.IsGestor(c) {
		query = query.Where("id IN (?)", database.DB.Model(&models.ThemeUser{}).
			Select("tema_custo_id").
			Where("usuario_id = ?", middleware.GetCurrentUserID(c)))
	}

	var temas []models.CostTheme
	if err := query.Order("nome ASC").Find(&temas).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Erro ao consultar temas"))
		return
	}

	resp := make([]TemaCustoResponse, 0, len(temas))
	for i := range temas {
		resp = append(resp, h.buildResponse(&temas[i]))
	}
	Success(c, resp)
}

// Get 获取单个主题
// @Summary 获取主题详情
// @Tags 支出主题
// @Produce json
// @Security BearerAuth
// @Param id path int true "主题ID"
// @Success 200 {object} TemaCustoResponse "获取成功"
// @Failure 404 {object} ErrorResponse "主题不存在"
// @Router /api/temacusto/{id} [get]
func (h *TemaCustoHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		BadRequest(c, "ID inválido")
		return
	}

	var tema models.CostTheme
	if err := database.DB.First(&tema, id).Error; err != nil {
		NotFound(c, "Tema de custo não encontrado")
		return
	}

	// 员工看不到未关联到自己的主题
	if !middleware.IsGestor(c) {
		var count int64
		database.DB.Model(&models.ThemeUser{}).
			Where("tema_custo_id = ? AND usuario_id = ?", tema.ID, middleware.GetCurrentUserID(c)).
			Count(&count)
		if count == 0 {
			NotFound(c, "Tema de custo não encontrado")
			return
		}
	}

	Success(c, h.buildResponse(&tema))
}

// Create 创建主题
// @Summary 创建支出主题
// @Description 创建主题并关联员工。usuarioIds 不能为空，所有 ID 必须存在；主题名不区分大小写唯一。
// @Tags 支出主题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTemaCustoRequest true "主题信息"
// @Success 201 {object} TemaCustoResponse "创建成功"
// @Failure 400 {object} ErrorResponse "参数错误、名称重复或员工不存在"
// @Failure 403 {object} ErrorResponse "仅管理者可创建"
// @Router /api/temacusto [post]
func (h *TemaCustoHandler) Create(c *gin.Context) {
	var req CreateTemaCustoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Dados do tema inválidos"))
		return
	}

	if len(req.UsuarioIDs) == 0 {
		BadRequest(c, "Selecione ao menos um funcionário para o tema")
		return
	}

	// 名称唯一（不区分大小写）
	nome := strings.TrimSpace(req.Nome)
	var existing models.CostTheme
	if err := database.DB.Where("LOWER(nome) = ?", strings.ToLower(nome)).First(&existing).Error; err == nil {
		BadRequest(c, "Já existe um tema com esse nome")
		return
	}

	// 所有员工 ID 必须存在
	var found int64
	if err := database.DB.Model(&models.User{}).Where("id IN ?", req.UsuarioIDs).Count(&found).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Erro ao validar funcionários"))
		return
	}
	if found != int64(len(req.UsuarioIDs)) {
		BadRequest(c, "Um ou mais funcionários informados não existem")
		return
	}

	tema := models.CostTheme{
		Nome:      nome,
		Descricao: req.Descricao,
		Cor:       req.Cor,
		Icone:     req.Icone,
	}
	if tema.Cor == "" {
		tema.Cor = "#3498db"
	}
	if tema.Icone == "" {
		tema.Icone = "label"
	}

	// 主题与关联行在同一事务内写入
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tema).Error; err != nil {
			return err
		}
		joins := make([]models.ThemeUser, 0, len(req.UsuarioIDs))
		for _, uid := range req.UsuarioIDs {
			joins = append(joins, models.ThemeUser{TemaCustoID: tema.ID, UsuarioID: uid})
		}
		return tx.Create(&joins).Error
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "Erro ao criar tema"))
		return
	}

	Created(c, h.buildResponse(&tema))
}

// Update 更新主题
// @Summary 更新支出主题
// @Description 替换名称/描述/颜色/图标；提供 usuarioIds 时整组替换关联员工（删除全部再重建，单事务）。
// @Tags 支出主题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "主题ID"
// @Param request body UpdateTemaCustoRequest true "主题信息"
// @Success 204 "更新成功"
// @Failure 400 {object} ErrorResponse "参数错误、名称重复或员工不存在"
// @Failure 404 {object} ErrorResponse "主题不存在"
// @Router /api/temacusto/{id} [put]
func (h *TemaCustoHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		BadRequest(c, "ID inválido")
		return
	}

	var tema models.CostTheme
	if err := database.DB.First(&tema, id).Error; err != nil {
		NotFound(c, "Tema de custo não encontrado")
		return
	}

	var req UpdateTemaCustoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Dados do tema inválidos"))
		return
	}

	nome := strings.TrimSpace(req.Nome)
	var existing models.CostTheme
	if err := database.DB.Where("LOWER(nome) = ? AND id != ?", strings.ToLower(nome), tema.ID).First(&existing).Error; err == nil {
		BadRequest(c, "Já existe outro tema com esse nome")
		return
	}

	if req.UsuarioIDs != nil {
		if len(*req.UsuarioIDs) == 0 {
			BadRequest(c, "Selecione ao menos um funcionário para o tema")
			return
		}
		var found int64
		if err := database.DB.Model(&models.User{}).Where("id IN ?", *req.UsuarioIDs).Count(&found).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "Erro ao validar funcionários"))
			return
		}
		if found != int64(len(*req.UsuarioIDs)) {
			BadRequest(c, "Um ou mais funcionários informados não existem")
			return
		}
	}

	updates := map[string]interface{}{
		"nome":      nome,
		"descricao": req.Descricao,
	}
	if req.Cor != "" {
		updates["cor"] = req.Cor
	}
	if req.Icone != "" {
		updates["icone"] = req.Icone
	}

	// 字段更新与关联整组替换在同一事务内完成，避免半更新的关联集
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&tema).Updates(updates).Error; err != nil {
			return err
		}
		if req.UsuarioIDs == nil {
			return nil
		}
		if err := tx.Where("tema_custo_id = ?", tema.ID).Delete(&models.ThemeUser{}).Error; err != nil {
			return err
		}
		joins := make([]models.ThemeUser, 0, len(*req.UsuarioIDs))
		for _, uid := range *req.UsuarioIDs {
			joins = append(joins, models.ThemeUser{TemaCustoID: tema.ID, UsuarioID: uid})
		}
		return tx.Create(&joins).Error
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "Erro ao atualizar tema"))
		return
	}

	NoContent(c)
}

// Delete 删除主题
// @Summary 删除支出主题
// @Description 存在关联支出时拒绝删除；否则删除主题及其员工关联（单事务）。
// @Tags 支出主题
// @Produce json
// @Security BearerAuth
// @Param id path int true "主题ID"
// @Success 204 "删除成功"
// @Failure 400 {object} ErrorResponse "主题存在关联支出"
// @Failure 403 {object} ErrorResponse "仅管理者可删除"
// @Failure 404 {object} ErrorResponse "主题不存在"
// @Router /api/temacusto/{id} [delete]
func (h *TemaCustoHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		BadRequest(c, "ID inválido")
		return
	}

	var tema models.CostTheme
	if err := database.DB.First(&tema, id).Error; err != nil {
		NotFound(c, "Tema de custo não encontrado")
		return
	}

	// 引用保护：有支出引用的主题不能删除
	var custoCount int64
	database.DB.Model(&models.Expense{}).Where("tema_custo_id = ?", tema.ID).Count(&custoCount)
	if custoCount > 0 {
		BadRequest(c, "Não é possível excluir um tema que possui custos associados")
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tema_custo_id = ?", tema.ID).Delete(&models.ThemeUser{}).Error; err != nil {
			return err
		}
		return tx.Delete(&tema).Error
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "Erro ao excluir tema"))
		return
	}

	NoContent(c)
}

// buildResponse 组装主题响应：汇总 + 关联员工列表
func (h *TemaCustoHandler) buildResponse(tema *models.CostTheme) TemaCustoResponse {
	var totalCustos int64
	var valorTotal float64
	database.DB.Model(&models.Expense{}).Where("tema_custo_id = ?", tema.ID).Count(&totalCustos)
	database.DB.Model(&models.Expense{}).Where("tema_custo_id = ?", tema.ID).
		Select("COALESCE(SUM(valor), 0)").Scan(&valorTotal)

	usuarios := []UsuarioResumo{}
	database.DB.Model(&models.ThemeUser{}).
		Select("usuarios.id, usuarios.nome, usuarios.email").
		Joins("JOIN usuarios ON usuarios.id = tema_custo_usuarios.usuario_id").
		Where("tema_custo_usuarios.tema_custo_id = ?", tema.ID).
		Scan(&usuarios)

	return TemaCustoResponse{
		ID:          tema.ID,
		Nome:        tema.Nome,
		Descricao:   tema.Descricao,
		Cor:         tema.Cor,
		Icone:       tema.Icone,
		TotalCustos: totalCustos,
		ValorTotal:  valorTotal,
		Usuarios:    usuarios,
	}
}
