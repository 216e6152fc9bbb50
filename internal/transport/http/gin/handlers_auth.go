package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/sievent/internal/service"
)

// @Summary  Register an account
// @Param    req body  RegisterRequest true "payload"
// @Success  201 {object} Envelope{data=users.Session}
// @Failure  400 {object} Envelope
// @Failure  409 {object} Envelope "email taken"
// @Router   /api/auth/register [post]
func handleRegister(svcs *service.Services, cookies cookieJar) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		sess, err := svcs.Users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			respondErr(c, err)
			return
		}

		cookies.set(c, sess.Token)
		ok(c, http.StatusCreated, sess)
	}
}

// @Summary  Log in
// @Param    req body  LoginRequest true "payload"
// @Success  200 {object} Envelope{data=users.Session}
// @Failure  401 {object} Envelope
// @Router   /api/auth/login [post]
func handleLogin(svcs *service.Services, cookies cookieJar) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		sess, err := svcs.Users.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondErr(c, err)
			return
		}

		cookies.set(c, sess.Token)
		ok(c, http.StatusOK, sess)
	}
}

// @Summary  Log out
// @Success  200 {object} Envelope
// @Router   /api/auth/logout [post]
func handleLogout(cookies cookieJar) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookies.clear(c)
		okMessage(c, "logged out")
	}
}

// @Summary  Current user
// @Success  200 {object} Envelope{data=domain.User}
// @Failure  401 {object} Envelope
// @Router   /api/auth/me [get]
func handleMe(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svcs.Users.Me(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			respondErr(c, err)
			return
		}
		ok(c, http.StatusOK, u)
	}
}

// @Summary  Email an account verification code
// @Success  200 {object} Envelope
// @Failure  409 {object} Envelope "already verified"
// @Router   /api/auth/send-verify-otp [post]
func handleSendVerifyOTP(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svcs.Users.SendVerifyOTP(c.Request.Context(), currentUser(c).ID); err != nil {
			respondErr(c, err)
			return
		}
		okMessage(c, "verification code sent")
	}
}

// @Summary  Verify the account with the emailed code
// @Param    req body  VerifyAccountRequest true "payload"
// @Success  200 {object} Envelope
// @Failure  400 {object} Envelope
// @Router   /api/auth/verify-account [post]
func handleVerifyAccount(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyAccountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		if err := svcs.Users.VerifyAccount(c.Request.Context(), currentUser(c).ID, req.OTP); err != nil {
			respondErr(c, err)
			return
		}
		okMessage(c, "account verified")
	}
}

// @Summary  Email a password reset code
// @Param    req body  SendResetOTPRequest true "payload"
// @Success  200 {object} Envelope
// @Router   /api/auth/send-reset-otp [post]
func handleSendResetOTP(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SendResetOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		if err := svcs.Users.SendResetOTP(c.Request.Context(), req.Email); err != nil {
			respondErr(c, err)
			return
		}
		okMessage(c, "reset code sent")
	}
}

// @Summary  Reset the password with the emailed code
// @Param    req body  ResetPasswordRequest true "payload"
// @Success  200 {object} Envelope
// @Failure  400 {object} Envelope
// @Router   /api/auth/reset-password [post]
func handleResetPassword(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ResetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		if err := svcs.Users.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
			respondErr(c, err)
			return
		}
		okMessage(c, "password updated")
	}
}

// @Summary  Ask to become a creator
// @Success  200 {object} Envelope
// @Failure  409 {object} Envelope
// @Router   /api/users/creator-request [post]
func handleRequestCreator(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svcs.Users.RequestCreator(c.Request.Context(), currentUser(c).ID); err != nil {
			respondErr(c, err)
			return
		}
		okMessage(c, "creator request submitted")
	}
}

// @Summary  Pending creator requests
// @Success  200 {object} Envelope{data=[]domain.User}
// @Failure  403 {object} Envelope
// @Router   /api/admin/creator-requests [get]
func handleListCreatorRequests(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svcs.Users.ListCreatorRequests(c.Request.Context(), currentActor(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		ok(c, http.StatusOK, list)
	}
}

// @Summary  Approve a creator request
// @Param    userId  path  string  true  "User ID (uuid)"
// @Success  200 {object} Envelope
// @Router   /api/admin/creator-requests/{userId}/approve [post]
func handleApproveCreator(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, valid := parseUUIDParam(c, "userId")
		if !valid {
			return
		}
		if err := svcs.Users.ApproveCreator(c.Request.Context(), currentActor(c), userID); err != nil {
			respondErr(c, err)
			return
		}
		okMessage(c, "creator request approved")
	}
}

// @Summary  Reject a creator request
// @Param    userId  path  string  true  "User ID (uuid)"
// @Success  200 {object} Envelope
// @Router   /api/admin/creator-requests/{userId}/reject [post]
func handleRejectCreator(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, valid := parseUUIDParam(c, "userId")
		if !valid {
			return
		}
		if err := svcs.Users.RejectCreator(c.Request.Context(), currentActor(c), userID); err != nil {
			respondErr(c, err)
			return
		}
		okMessage(c, "creator request rejected")
	}
}
