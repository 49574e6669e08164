package models

import (
	"time"
)

// CostTheme 支出主题（类别）模型
// 员工只能看到与自己关联的主题，关联关系保存在 ThemeUser。
type CostTheme struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Nome      string    `json:"nome" gorm:"size:100;not null;uniqueIndex"`
	Descricao string    `json:"descricao" gorm:"size:500"`
	Cor       string    `json:"cor" gorm:"size:7;default:#3498db"` // 十六进制颜色，如 #FF5733
	Icone     string    `json:"icone" gorm:"size:50;default:label"` // Material Icons 图标名
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 设置表名
func (CostTheme) TableName() string {
	return "temas_custo"
}

// ThemeUser 主题-员工关联表
type ThemeUser struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	TemaCustoID uint      `json:"tema_custo_id" gorm:"not null;uniqueIndex:idx_tema_usuario"`
	UsuarioID   uint      `json:"usuario_id" gorm:"not null;uniqueIndex:idx_tema_usuario"`
	CriadoEm    time.Time `json:"criado_em" gorm:"autoCreateTime"`

	TemaCusto CostTheme `json:"-" gorm:"foreignKey:TemaCustoID"`
	Usuario   User      `json:"-" gorm:"foreignKey:UsuarioID"`
}

// TableName 设置表名
func (ThemeUser) TableName() string {
	return "tema_custo_usuarios"
}
