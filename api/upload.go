package api

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"consec/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// 上传校验错误，调用方统一映射为 400
var (
	ErrFileTooLarge        = errors.New("O arquivo deve ter no máximo 5MB")
	ErrUnsupportedFileType = errors.New("Formato de arquivo não permitido. Use: PDF, JPG, PNG")
)

// ValidateReceipt 校验凭证文件的大小与扩展名
func ValidateReceipt(file *multipart.FileHeader, cfg *config.UploadConfig) error {
	if file.Size > cfg.MaxSizeBytes {
		return ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	for _, allowed := range cfg.AllowedExts {
		if ext == allowed {
			return nil
		}
	}
	return ErrUnsupportedFileType
}

// SaveReceipt 校验并保存凭证文件，返回对外公开路径（如 /uploads/<uuid>.pdf）
// 文件落盘与数据库写入不在同一事务内：行写入失败时可能留下孤儿文件，由调用方按需清理。
func SaveReceipt(c *gin.Context, file *multipart.FileHeader, cfg *config.UploadConfig) (string, error) {
	if err := ValidateReceipt(file, cfg); err != nil {
		return "", err
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("criar diretório de uploads: %w", err)
	}

	// 生成唯一文件名，避免覆盖与路径注入
	ext := strings.ToLower(filepath.Ext(file.Filename))
	name := uuid.NewString() + ext
	dst := filepath.Join(cfg.Dir, name)

	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", fmt.Errorf("salvar arquivo: %w", err)
	}

	return "/uploads/" + name, nil
}

// RemoveReceipt 尽力删除已保存的凭证文件；文件不存在不视为错误
func RemoveReceipt(publicPath string, cfg *config.UploadConfig) error {
	if publicPath == "" {
		return nil
	}
	name := filepath.Base(publicPath)
	if name == "." || name == "/" {
		return nil
	}
	err := os.Remove(filepath.Join(cfg.Dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ReceiptDiskPath 由公开路径推出磁盘路径
func ReceiptDiskPath(publicPath string, cfg *config.UploadConfig) string {
	return filepath.Join(cfg.Dir, filepath.Base(publicPath))
}

// serveReceipt 以附件形式返回凭证文件；路径为空或文件缺失返回 404
func serveReceipt(c *gin.Context, publicPath string, cfg *config.UploadConfig) {
	if publicPath == "" {
		NotFound(c, "Comprovante não encontrado")
		return
	}
	diskPath := ReceiptDiskPath(publicPath, cfg)
	if _, err := os.Stat(diskPath); err != nil {
		NotFound(c, "Arquivo não encontrado no servidor")
		return
	}
	c.FileAttachment(diskPath, filepath.Base(diskPath))
}
