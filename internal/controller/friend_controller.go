package controller

import (
	"qa_forum_backend/internal/service"
	"qa_forum_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type FriendController struct {
	FriendshipService *service.FriendshipService
	Hub               *service.NotificationHub
}

func NewFriendController(friendshipService *service.FriendshipService, hub *service.NotificationHub) *FriendController {
	return &FriendController{FriendshipService: friendshipService, Hub: hub}
}

// @Summary My friends
// @Tags Friends
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /friends [get]
func (c *FriendController) ListFriends(ctx *gin.Context) {
	friends, err := c.FriendshipService.List(util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"friends": friends, "count": len(friends)})
}

// @Summary Add a friend
// @Tags Friends
// @Security BearerAuth
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "Already friends"
// @Router /friends/{userId} [post]
func (c *FriendController) AddFriend(ctx *gin.Context) {
	if err := c.FriendshipService.Add(util.GetUserFromContext(ctx), ctx.Param("userId")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Friend added", nil)
}

// @Summary Remove a friend
// @Tags Friends
// @Security BearerAuth
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "Not friends"
// @Router /friends/{userId} [delete]
func (c *FriendController) RemoveFriend(ctx *gin.Context) {
	if err := c.FriendshipService.Remove(util.CurrentUserID(ctx), ctx.Param("userId")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Friend removed", nil)
}

// @Summary Friendship status with a user
// @Tags Friends
// @Security BearerAuth
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} util.Response
// @Router /friends/{userId}/status [get]
func (c *FriendController) FriendStatus(ctx *gin.Context) {
	ok, err := c.FriendshipService.Status(util.CurrentUserID(ctx), ctx.Param("userId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	// Presence is only visible between friends.
	online := ok && c.Hub != nil && c.Hub.IsOnline(ctx.Param("userId"))
	util.Success(ctx, gin.H{"isFriend": ok, "online": online})
}
