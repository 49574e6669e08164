package models

import (
	"time"
)

const (
	// CargoGestor 管理者：可管理员工、主题、余额并查看看板
	CargoGestor = "gestor"
	// CargoFuncionario 员工：只能管理自己的支出
	CargoFuncionario = "funcionario"
)

// User 用户模型
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Nome      string    `json:"nome" gorm:"size:100;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;size:150;not null"`
	Senha     string    `json:"-" gorm:"size:255;not null"` // bcrypt 哈希
	Cargo     string    `json:"cargo" gorm:"size:20;not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 设置表名
func (User) TableName() string {
	return "usuarios"
}

// IsGestor 是否为管理者
func (u *User) IsGestor() bool {
	return u.Cargo == CargoGestor
}
