package api

import (
	"log"
	"strings"

	"consec/config"
	"consec/database"
	"consec/models"
	"consec/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UsuarioHandler 员工管理处理器（仅管理者）
type UsuarioHandler struct {
	cfg   *config.Config
	email *service.EmailService
}

// NewUsuarioHandler 创建员工管理处理器
func NewUsuarioHandler(cfg *config.Config) *UsuarioHandler {
	return &UsuarioHandler{cfg: cfg, email: service.NewEmailService(cfg)}
}

// CreateFuncionarioRequest 创建员工请求
type CreateFuncionarioRequest struct {
	Nome  string `json:"nome" binding:"required,max=100" example:"Maria Silva"`
	Email string `json:"email" binding:"required,email" example:"maria@empresa.com"`
	Senha string `json:"senha" binding:"required,min=6" example:"senha123"`
}

// UpdateFuncionarioRequest 更新员工请求（字段可选，留空不变）
type UpdateFuncionarioRequest struct {
	Nome  string `json:"nome" binding:"omitempty,max=100"`
	Email string `json:"email" binding:"omitempty,email"`
	Senha string `json:"senha" binding:"omitempty,min=6"`
}

// TemaResumo 员工响应中的主题摘要
type TemaResumo struct {
	ID    uint   `json:"id"`
	Nome  string `json:"nome"`
	Cor   string `json:"cor"`
	Icone string `json:"icone"`
}

// FuncionarioResponse 员工响应
type FuncionarioResponse struct {
	ID    uint         `json:"id"`
	Nome  string       `json:"nome"`
	Email string       `json:"email"`
	Cargo string       `json:"cargo"`
	Temas []TemaResumo `json:"temas"`
}

// List 获取员工列表
// @Summary 获取员工列表
// @Description 返回全部员工（cargo=funcionario）及其关联主题。
// @Tags 员工管理
// @Produce json
// @Security BearerAuth
// @Success 200 {array} FuncionarioResponse "获取成功"
// @Failure 403 {object} ErrorResponse "仅管理者"
// @Router /api/usuario/funcionarios [get]
func (h *UsuarioHandler) List(c *gin.Context) {
	var users []models.User
	if err := database.DB.Where("cargo = ?", models.CargoFuncionario).
		Order("nome ASC").Find(&users).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Erro ao consultar funcionários"))
		return
	}

	resp := make([]FuncionarioResponse, 0, len(users))
	for i := range users {
		resp = append(resp, h.buildResponse(&users[i]))
	}
	Success(c, resp)
}

// Create 创建员工
// @Summary 创建员工账号
// @Description 管理者创建员工账号，cargo 固定为 funcionario。邮箱不区分大小写唯一。
// @Tags 员工管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateFuncionarioRequest true "员工信息"
// @Success 201 {object} FuncionarioResponse "创建成功"
// @Failure 400 {object} ErrorResponse "参数错误或邮箱已存在"
// @Router /api/usuario/criar-funcionario [post]
func (h *UsuarioHandler) Create(c *gin.Context) {
	var req CreateFuncionarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Dados do funcionário inválidos"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var existing models.User
	if err := database.DB.Where("LOWER(email) = ?", email).First(&existing).Error; err == nil {
		BadRequest(c, "Já existe um usuário com este email")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Senha), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "Erro ao processar senha"))
		return
	}

	user := models.User{
		Nome:  strings.TrimSpace(req.Nome),
		Email: email,
		Senha: string(hash),
		Cargo: models.CargoFuncionario,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Erro ao criar funcionário"))
		return
	}

	// 欢迎邮件失败不影响创建结果
	if err := h.email.SendWelcome(user.Email, user.Nome); err != nil {
		log.Printf("发送欢迎邮件失败: %v", err)
	}

	Created(c, h.buildResponse(&user))
}

// Update 更新员工
// @Summary 更新员工信息
// @Description 部分更新：仅更新提供的字段。只能更新 cargo=funcionario 的账号。
// @Tags 员工管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "员工ID"
// @Param request body UpdateFuncionarioRequest true "员工信息"
// @Success 204 "更新成功"
// @Failure 400 {object} ErrorResponse "参数错误、邮箱已存在或目标不是员工"
// @Failure 404 {object} ErrorResponse "员工不存在"
// @Router /api/usuario/funcionario/{id} [put]
func (h *UsuarioHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		BadRequest(c, "ID inválido")
		return
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		NotFound(c, "Funcionário não encontrado")
		return
	}
	if user.Cargo != models.CargoFuncionario {
		BadRequest(c, "Apenas contas de funcionário podem ser alteradas")
		return
	}

	var req UpdateFuncionarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Dados do funcionário inválidos"))
		return
	}

	updates := map[string]interface{}{}
	if req.Nome != "" {
		updates["nome"] = strings.TrimSpace(req.Nome)
	}
	if req.Email != "" {
		email := strings.ToLower(strings.TrimSpace(req.Email))
		var existing models.User
		if err := database.DB.Where("LOWER(email) = ? AND id != ?", email, user.ID).First(&existing).Error; err == nil {
			BadRequest(c, "Já existe um usuário com este email")
			return
		}
		updates["email"] = email
	}
	if req.Senha != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Senha), bcrypt.DefaultCost)
		if err != nil {
			InternalError(c, SafeErrorMessage(err, "Erro ao processar senha"))
			return
		}
		updates["senha"] = string(hash)
	}

	if len(updates) == 0 {
		NoContent(c)
		return
	}

	if err := database.DB.Model(&user).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Erro ao atualizar funcionário"))
		return
	}
	NoContent(c)
}

// Delete 删除员工
// @Summary 删除员工账号
// @Description 员工仍关联到主题时拒绝删除；否则删除账号及其全部支出（含回执文件），单事务。
// @Tags 员工管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "员工ID"
// @Success 204 "删除成功"
// @Failure 400 {object} ErrorResponse "员工仍关联主题或目标不是员工"
// @Failure 404 {object} ErrorResponse "员工不存在"
// @Router /api/usuario/funcionario/{id} [delete]
func (h *UsuarioHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		BadRequest(c, "ID inválido")
		return
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		NotFound(c, "Funcionário não encontrado")
		return
	}
	if user.Cargo != models.CargoFuncionario {
		BadRequest(c, "Apenas contas de funcionário podem ser removidas")
		return
	}

	// 引用保护：仍关联主题的员工不能删除
	var temaCount int64
	database.DB.Model(&models.ThemeUser{}).Where("usuario_id = ?", user.ID).Count(&temaCount)
	if temaCount > 0 {
		BadRequest(c, "Remova o funcionário dos temas de custo antes de excluí-lo")
		return
	}

	// 先收集回执路径，行删除提交后再清理文件
	var paths []string
	database.DB.Model(&models.Expense{}).
		Where("usuario_id = ? AND arquivo_anexo_path != ''", user.ID).
		Pluck("arquivo_anexo_path", &paths)

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("usuario_id = ?", user.ID).Delete(&models.Expense{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "Erro ao excluir funcionário"))
		return
	}

	for _, p := range paths {
		RemoveReceipt(p, &h.cfg.Upload)
	}

	NoContent(c)
}

// buildResponse 组装员工响应及其关联主题
func (h *UsuarioHandler) buildResponse(user *models.User) FuncionarioResponse {
	temas := []TemaResumo{}
	database.DB.Model(&models.ThemeUser{}).
		Select("temas_custo.id, temas_custo.nome, temas_custo.cor, temas_custo.icone").
		Joins("JOIN temas_custo ON temas_custo.id = tema_custo_usuarios.tema_custo_id").
		Where("tema_custo_usuarios.usuario_id = ?", user.ID).
		Scan(&temas)

	return FuncionarioResponse{
		ID:    user.ID,
		Nome:  user.Nome,
		Email: user.Email,
		Cargo: user.Cargo,
		Temas: temas,
	}
}
