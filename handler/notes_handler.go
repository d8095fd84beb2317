package handler

import (
	"github.com/gin-gonic/gin"

	"notetaker/dto"
	"notetaker/usecase"
	"notetaker/utils"
)

func CreateNoteHandler(c *gin.Context, notesService *usecase.NotesService) {
	var req dto.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "title and content required")
		return
	}

	note, err := notesService.Create(c.Request.Context(), req.Title, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	utils.Created(c, note)
}

func ListNotesHandler(c *gin.Context, notesService *usecase.NotesService) {
	notes, err := notesService.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	utils.Success(c, notes)
}

func GetNoteHandler(c *gin.Context, notesService *usecase.NotesService) {
	note, err := notesService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	utils.Success(c, note)
}

func UpdateNoteHandler(c *gin.Context, notesService *usecase.NotesService) {
	var req dto.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	note, err := notesService.Update(c.Request.Context(), c.Param("id"), usecase.NoteUpdate{
		Title:        req.Title,
		Content:      req.Content,
		Translations: req.Translations,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	utils.Success(c, note)
}

func DeleteNoteHandler(c *gin.Context, notesService *usecase.NotesService) {
	if err := notesService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	utils.Success(c, gin.H{"message": "Note deleted successfully"})
}

func SearchNotesHandler(c *gin.Context, notesService *usecase.NotesService) {
	notes, err := notesService.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}
	utils.Success(c, notes)
}

func TranslateNoteHandler(c *gin.Context, notesService *usecase.NotesService) {
	var req dto.TranslateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	id := c.Param("id")
	translated, err := notesService.Translate(c.Request.Context(), id, req.To)
	if err != nil {
		writeError(c, err)
		return
	}
	utils.Success(c, dto.TranslateNoteResponse{ID: id, TranslatedContent: translated})
}

func GenerateNoteHandler(c *gin.Context, notesService *usecase.NotesService) {
	var req dto.GenerateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "prompt must be a non-empty string")
		return
	}

	note, err := notesService.Generate(c.Request.Context(), req.Prompt)
	if err != nil {
		writeError(c, err)
		return
	}
	utils.Created(c, note)
}
