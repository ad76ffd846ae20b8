// Copyright 2020 Qiniu Cloud (qiniu.com)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import "encoding/json"

// ServerError 服务端内部错误与非正常返回结果定义
type ServerError struct {
	Code    int    `json:"code"`
	Summary string `json:"summary"`
}

func (e *ServerError) Error() string {
	buf, _ := json.Marshal(e)
	return string(buf)
}

// 各种服务端内部错误的错误码定义。错误码为5位数字。
const (
	// 1开头表示服务端内部，或数据库访问相关的错误。
	ServerErrorApplicationNotFound = 10001
	ServerErrorDuplicateEmail      = 10002
	ServerErrorInvalidCredentials  = 10003
	ServerErrorUserNotFound        = 10004
	ServerErrorWrongPassword       = 10005
	ServerErrorUsernameTaken       = 10006
	ServerErrorJobPositionNotFound = 10007
	ServerErrorInvalidID           = 10008
	ServerErrorInterviewInPast     = 10009
	ServerErrorInvalidStatus       = 10010
	ServerErrorResumeRequired      = 10011
	ServerErrorBadInterviewTime    = 10012
	// 2开头表示外部服务错误。
	ServerErrorStorageFail = 20001
)

func New(code int, summary string) *ServerError {
	return &ServerError{Code: code, Summary: summary}
}

var (
	ErrApplicationNotFound = New(ServerErrorApplicationNotFound, "Application not found")
	ErrDuplicateEmail      = New(ServerErrorDuplicateEmail, "Application with this email already exists")
	ErrInvalidCredentials  = New(ServerErrorInvalidCredentials, "Invalid credentials")
	ErrInvalidAdminCreds   = New(ServerErrorInvalidCredentials, "Invalid admin credentials")
	ErrUserNotFound        = New(ServerErrorUserNotFound, "User not found")
	ErrAdminNotFound       = New(ServerErrorUserNotFound, "Admin not found")
	ErrWrongPassword       = New(ServerErrorWrongPassword, "Invalid password")
	ErrWrongOldPassword    = New(ServerErrorWrongPassword, "Invalid old password")
	ErrUsernameTaken       = New(ServerErrorUsernameTaken, "Username already exists")
	ErrJobPositionNotFound = New(ServerErrorJobPositionNotFound, "Job position not found")
	ErrInvalidID           = New(ServerErrorInvalidID, "Resource not found")
	ErrInvalidStatus       = New(ServerErrorInvalidStatus, "Invalid status")
	ErrResumeRequired      = New(ServerErrorResumeRequired, "Resume is required")
	ErrStorageFail         = New(ServerErrorStorageFail, "Failed to store uploaded file")
)

// UploadError 上传文件不符合要求，消息原样返回给调用方。
type UploadError struct {
	Field   string
	Message string
}

func (e *UploadError) Error() string {
	return e.Message
}

func NewUploadError(field, message string) *UploadError {
	return &UploadError{Field: field, Message: message}
}
