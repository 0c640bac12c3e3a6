package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ASHISH26940/asmr-studio-api/pkg/db"
	"github.com/ASHISH26940/asmr-studio-api/pkg/utils"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handlers) LoginUser(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debugf("LoginUser: Invalid request body: %v", err)
		utils.ResponseWithError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	req.Email = strings.ToLower(req.Email)

	user, err := h.Store.FindUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		log.Errorf("LoginUser: Error finding user by email: %v", err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Login failed", nil) // Generic error for security
		return
	}
	if user == nil {
		log.Debugf("LoginUser: User with email '%s' not found.", req.Email)
		utils.ResponseWithError(c, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Debugf("LoginUser: Invalid password for user '%s'.", req.Email)
		utils.ResponseWithError(c, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	token, err := h.JWT.GenerateToken(user.ID, user.Email, user.Username)
	if err != nil {
		log.Errorf("LoginUser: Failed to generate JWT token for user %s: %v", user.Email, err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Failed to generate authentication token", nil)
		return
	}

	log.Infof("User %s logged in successfully.", user.Email)
	utils.ResponseWithSuccess(c, http.StatusOK, "Login successful", gin.H{"token": token, "user": user})
}

func (h *Handlers) RegisterUser(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debugf("RegisterUser: Invalid request body: %v", err)
		utils.ResponseWithError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	req.Email = strings.ToLower(req.Email)
	ctx := c.Request.Context()

	existingUser, err := h.Store.FindUserByEmail(ctx, req.Email)
	if err != nil {
		log.Errorf("RegisterUser: Error finding user by email '%s': %v", req.Email, err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Error finding user by email", err.Error())
		return
	}
	if existingUser != nil {
		log.Debugf("RegisterUser: User with email '%s' already exists.", req.Email)
		utils.ResponseWithError(c, http.StatusConflict, "User with email already exists", nil)
		return
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Errorf("RegisterUser: Error hashing password: %v", err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Error hashing password", err.Error())
		return
	}

	createdUser, err := h.Store.CreateUser(ctx, &db.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
	})
	if err != nil {
		log.Errorf("RegisterUser: Error creating user: %v", err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Error creating user", err.Error())
		return
	}
	log.Infof("User with ID '%s' created.", createdUser.ID.String())

	utils.ResponseWithSuccess(c, http.StatusCreated, "User created successfully", gin.H{"user": createdUser})
}

// GetProfile returns the caller's account together with the wallet view.
func (h *Handlers) GetProfile(c *gin.Context) {
	userID, ok := requireUserID(c, "GetProfile")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	user, err := h.Store.FindUserByID(ctx, userID)
	if err != nil {
		log.Errorf("GetProfile: Error loading user %s: %v", userID, err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Failed to load profile", nil)
		return
	}
	if user == nil {
		utils.ResponseWithError(c, http.StatusNotFound, "User account not found", nil)
		return
	}
	wallet, err := h.Wallet.Balance(ctx, userID)
	if err != nil {
		respondError(c, "GetProfile", err)
		return
	}
	utils.ResponseWithSuccess(c, http.StatusOK, "Welcome to your profile!", gin.H{
		"user":   user,
		"wallet": wallet,
	})
}

// DeleteUser removes the account identified by the token. The token is the
// only proof of identity needed.
func (h *Handlers) DeleteUser(c *gin.Context) {
	userID, ok := requireUserID(c, "DeleteUser")
	if !ok {
		return
	}

	log.Infof("DeleteUser: Attempting deletion for user ID: '%s'", userID)
	err := h.Store.DeleteUser(c.Request.Context(), userID)
	if errors.Is(err, db.ErrNotFound) {
		log.Warnf("DeleteUser: User '%s' from a valid token is not in the store.", userID)
		utils.ResponseWithError(c, http.StatusNotFound, "User account not found or already deleted.", nil)
		return
	}
	if err != nil {
		log.Errorf("DeleteUser: Error deleting user with ID '%s': %v", userID, err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Failed to delete user account", nil)
		return
	}

	log.Infof("DeleteUser: User with ID '%s' deleted successfully.", userID)
	utils.ResponseWithSuccess(c, http.StatusOK, "User account deleted successfully", nil)
}
