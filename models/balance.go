package models

import (
	"time"
)

// Balance 入账余额模型（独立台账，与支出无外键关系）
type Balance struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Descricao        string    `json:"descricao" gorm:"size:200;not null"`
	Valor            float64   `json:"valor" gorm:"type:decimal(10,2);not null"`
	DataEntrada      time.Time `json:"dataEntrada" gorm:"not null;index"`
	ArquivoAnexoPath string    `json:"arquivoAnexoPath" gorm:"size:500"`
	UsuarioID        uint      `json:"usuarioId" gorm:"index;not null"` // 登记该余额的管理者
	CriadoEm         time.Time `json:"criadoEm" gorm:"autoCreateTime"`

	Usuario User `json:"-" gorm:"foreignKey:UsuarioID"`
}

// TableName 设置表名
func (Balance) TableName() string {
	return "saldos"
}
