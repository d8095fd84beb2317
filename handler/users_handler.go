package handler

import (
	"github.com/gin-gonic/gin"

	"notetaker/dto"
	"notetaker/usecase"
	"notetaker/utils"
)

func CreateUserHandler(c *gin.Context, usersService *usecase.UsersService) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "username and email required")
		return
	}

	user, err := usersService.Create(c.Request.Context(), req.Username, req.Email)
	if err != nil {
		writeError(c, err)
		return
	}
	utils.Created(c, user)
}

func ListUsersHandler(c *gin.Context, usersService *usecase.UsersService) {
	users, err := usersService.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	utils.Success(c, users)
}

func GetUserHandler(c *gin.Context, usersService *usecase.UsersService) {
	user, err := usersService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	utils.Success(c, user)
}

func UpdateUserHandler(c *gin.Context, usersService *usecase.UsersService) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	user, err := usersService.Update(c.Request.Context(), c.Param("id"), usecase.UserUpdate{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	utils.Success(c, user)
}

func DeleteUserHandler(c *gin.Context, usersService *usecase.UsersService) {
	if err := usersService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	utils.Success(c, gin.H{"message": "User deleted successfully"})
}
