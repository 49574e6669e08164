package models

import (
	"time"
)

// Expense 支出记录模型
type Expense struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Descricao        string    `json:"descricao" gorm:"size:255;not null"`
	Valor            float64   `json:"valor" gorm:"type:decimal(10,2);not null"`
	Tipo             string    `json:"tipo" gorm:"size:50;not null"` // "unico" / "semanal" / "mensal"（仅作展示，不做状态机）
	DataPagamento    time.Time `json:"dataPagamento" gorm:"not null;index"`
	Comentario       string    `json:"comentario" gorm:"size:500"`
	ArquivoAnexoPath string    `json:"arquivoAnexoPath" gorm:"size:255"` // 凭证文件公开路径，如 /uploads/<uuid>.pdf
	UsuarioID        uint      `json:"usuarioId" gorm:"index;not null"`
	TemaCustoID      uint      `json:"temaCustoId" gorm:"index;not null"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Usuario   User      `json:"-" gorm:"foreignKey:UsuarioID"`
	TemaCusto CostTheme `json:"-" gorm:"foreignKey:TemaCustoID"`
}

// TableName 设置表名
func (Expense) TableName() string {
	return "custos"
}

// 支出类型常量
const (
	TipoUnico   = "unico"
	TipoSemanal = "semanal"
	TipoMensal  = "mensal"
)
