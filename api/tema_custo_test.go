package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"consec/middleware"
	"consec/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemaCustoHandler_Create_NoUsuarios(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setAuthMiddleware(1, models.CargoGestor))
	router.POST("/temacusto", NewTemaCustoHandler().Create)

	body := `{"nome":"Alimentação","usuarioIds":[]}`
	req := httptest.NewRequest("POST", "/temacusto", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Selecione ao menos um funcionário para o tema", resp.Message)
}

func TestTemaCustoHandler_Create_DuplicateNome(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 名称检查不区分大小写
	mock.ExpectQuery("SELECT .* FROM `temas_custo`").
		WithArgs("alimentação").
		WillReturnRows(sqlmock.NewRows([]string{"id", "nome"}).AddRow(1, "Alimentação"))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setAuthMiddleware(1, models.CargoGestor))
	router.POST("/temacusto", NewTemaCustoHandler().Create)

	body := `{"nome":"ALIMENTAÇÃO","usuarioIds":[2]}`
	req := httptest.NewRequest("POST", "/temacusto", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Já existe um tema com esse nome", resp.Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTemaCustoHandler_Create_UnknownUsuario(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `temas_custo`").
		WithArgs("viagens").
		WillReturnRows(sqlmock.NewRows([]string{}))

	// 3 个 ID 只找到 2 个
	mock.ExpectQuery("SELECT count.* FROM `usuarios`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setAuthMiddleware(1, models.CargoGestor))
	router.POST("/temacusto", NewTemaCustoHandler().Create)

	body := `{"nome":"Viagens","usuarioIds":[2,3,99]}`
	req := httptest.NewRequest("POST", "/temacusto", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Um ou mais funcionários informados não existem", resp.Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTemaCustoHandler_Delete_WithCustos(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `temas_custo`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nome"}).AddRow(1, "Alimentação"))

	// 主题下仍有支出
	mock.ExpectQuery("SELECT count.* FROM `custos`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setAuthMiddleware(1, models.CargoGestor))
	router.DELETE("/temacusto/:id", NewTemaCustoHandler().Delete)

	req := httptest.NewRequest("DELETE", "/temacusto/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Não é possível excluir um tema que possui custos associados", resp.Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTemaCustoHandler_Delete_GestorOnly(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	// 员工通过 GestorOnly 网关时被拒绝
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setAuthMiddleware(2, models.CargoFuncionario))
	router.DELETE("/temacusto/:id", middleware.GestorOnly(), NewTemaCustoHandler().Delete)

	req := httptest.NewRequest("DELETE", "/temacusto/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 403, w.Code)
}
