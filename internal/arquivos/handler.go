package arquivos

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type Handler struct {
	Storage *Storage
}

func NewHandler(storage *Storage) *Handler {
	return &Handler{Storage: storage}
}

// POST /clientes/{id}/arquivos (multipart, campo "arquivo")
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	clienteID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, TamanhoMaximo)
	if err := r.ParseMultipartForm(TamanhoMaximo); err != nil {
		http.Error(w, "Arquivo excede o tamanho máximo de 10MB", http.StatusRequestEntityTooLarge)
		return
	}
	arquivo, header, err := r.FormFile("arquivo")
	if err != nil {
		http.Error(w, "Campo 'arquivo' é obrigatório", http.StatusBadRequest)
		return
	}
	defer arquivo.Close()

	salvo, err := h.Storage.Salvar(uint(clienteID), header.Filename, arquivo)
	if err != nil {
		http.Error(w, "Erro ao salvar arquivo", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(salvo)
}

// GET /clientes/{id}/arquivos
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	clienteID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	arquivos, err := h.Storage.Listar(uint(clienteID))
	if err != nil {
		http.Error(w, "Erro ao listar arquivos", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(arquivos)
}

// GET /clientes/{id}/arquivos/{nome}
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clienteID, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	f, err := h.Storage.Abrir(uint(clienteID), vars["nome"])
	if err != nil {
		http.Error(w, "Arquivo não encontrado", http.StatusNotFound)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Disposition", "attachment; filename=\""+vars["nome"]+"\"")
	w.Header().Set("Content-Type", "application/octet-stream")
	io.Copy(w, f)
}

// DELETE /clientes/{id}/arquivos/{nome}
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clienteID, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	if err := h.Storage.Remover(uint(clienteID), vars["nome"]); err != nil {
		http.Error(w, "Arquivo não encontrado", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
