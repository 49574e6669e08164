package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"consec/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsuarioHandler_Create_DuplicateEmail(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `usuarios`").
		WithArgs("joao@empresa.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "nome", "email", "cargo"}).
			AddRow(3, "João", "joao@empresa.com", "funcionario"))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setAuthMiddleware(1, models.CargoGestor))
	router.POST("/usuario/criar-funcionario", NewUsuarioHandler(testConfig()).Create)

	body := `{"nome":"João Souza","email":"joao@empresa.com","senha":"senha123"}`
	req := httptest.NewRequest("POST", "/usuario/criar-funcionario", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Já existe um usuário com este email", resp.Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUsuarioHandler_Delete_WithTemas(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `usuarios`").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nome", "email", "cargo"}).
			AddRow(3, "João", "joao@empresa.com", "funcionario"))

	// 员工仍关联到主题
	mock.ExpectQuery("SELECT count.* FROM `tema_custo_usuarios`").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setAuthMiddleware(1, models.CargoGestor))
	router.DELETE("/usuario/funcionario/:id", NewUsuarioHandler(testConfig()).Delete)

	req := httptest.NewRequest("DELETE", "/usuario/funcionario/3", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Remova o funcionário dos temas de custo antes de excluí-lo", resp.Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUsuarioHandler_Update_NotFuncionario(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 目标是管理者账号
	mock.ExpectQuery("SELECT .* FROM `usuarios`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nome", "email", "cargo"}).
			AddRow(1, "Carla", "carla@empresa.com", "gestor"))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setAuthMiddleware(1, models.CargoGestor))
	router.PUT("/usuario/funcionario/:id", NewUsuarioHandler(testConfig()).Update)

	body := `{"nome":"Novo Nome"}`
	req := httptest.NewRequest("PUT", "/usuario/funcionario/1", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
