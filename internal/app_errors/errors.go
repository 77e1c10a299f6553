package app_errors

import "errors"

var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrIncorrectPassword = errors.New("incorrect password")
var ErrKeyNotFound = errors.New("signing key not found")
var ErrTokenExpired = errors.New("token expired")
var ErrTokenInvalid = errors.New("token invalid")
var ErrTokenRevoked = errors.New("token revoked")
var ErrRefreshMismatch = errors.New("refresh token mismatch")
var ErrRefreshExpired = errors.New("refresh token expired")
var ErrRoomNotFound = errors.New("room not found")
var ErrNotRoomMember = errors.New("not a room member")
var ErrAlreadyRoomMember = errors.New("already a room member")
var ErrMessageNotFound = errors.New("message not found")
var ErrFriendRequestExists = errors.New("friend request already exists")
var ErrFriendRequestNotFound = errors.New("friend request not found")
var ErrAlreadyFriends = errors.New("already friends")
var ErrUserBlocked = errors.New("user is blocked")
var ErrPostNotFound = errors.New("post not found")
var ErrNotPostAuthor = errors.New("you are not post author")
var ErrInquiryNotFound = errors.New("inquiry not found")
var ErrFileNotFound = errors.New("file not found")
