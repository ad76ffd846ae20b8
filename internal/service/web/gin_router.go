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

package web

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/log"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/job-portal/internal/common/utils"
	"github.com/solutions/job-portal/internal/service/cloud"
	"github.com/solutions/job-portal/internal/service/db"
	"github.com/solutions/job-portal/internal/service/task"
	"github.com/solutions/job-portal/internal/service/web/handler"
	"github.com/solutions/job-portal/internal/service/web/middleware"
)

// ApplicationStore 申请相关的全部存取操作。
type ApplicationStore interface {
	handler.ApplicationInterface
	handler.ReviewInterface
	handler.CandidateAccountInterface
	task.DocumentIndex
}

// PositionStore 岗位相关的全部存取操作。
type PositionStore interface {
	handler.OpenPositionInterface
	handler.CapacityInterface
	handler.JobPositionInterface
}

// Services 路由依赖的服务。
type Services struct {
	Applications ApplicationStore
	Positions    PositionStore
	Admins       handler.AdminAccountInterface
	Storage      cloud.DocumentStorage
	// Limiter 登录限流，为空时不限流。
	Limiter middleware.Limiter
}

// NewServices 连接 mongo 并按配置创建存储与限流器。
func NewServices(config *utils.Config) (*Services, error) {
	xl := xlog.New("job-portal-init")
	applications, err := db.NewApplicationService(*config.Mongo, nil)
	if err != nil {
		return nil, err
	}
	positions, err := db.NewJobPositionService(*config.Mongo, nil)
	if err != nil {
		return nil, err
	}
	admins, err := db.NewAdminService(*config.Mongo, nil)
	if err != nil {
		return nil, err
	}
	storage, err := cloud.NewDocumentStorage(config.Upload)
	if err != nil {
		return nil, err
	}
	xl.Infof("document storage: %s, rate limit: %+v", config.Upload.Provider, config.RateLimit)
	return &Services{
		Applications: applications,
		Positions:    positions,
		Admins:       admins,
		Storage:      storage,
		Limiter:      middleware.NewLimiter(config.RateLimit),
	}, nil
}

// NewRouter 返回gin router，分流API。
func NewRouter(config *utils.Config, services *Services) *gin.Engine {
	// 1. 初始化GIN
	router := gin.New()
	router.Use(gin.Recovery())
	// 1.1. 客户端IP只信任配置的代理转发的头部
	if err := router.SetTrustedProxies(config.TrustedProxies); err != nil {
		log.Errorf("invalid trusted proxies %v, trust none, error %v", config.TrustedProxies, err)
		_ = router.SetTrustedProxies(nil)
	}
	// 1.2. 全局CORS配置
	router.Use(corsMiddleware(config.AllowOrigins))
	router.Use(middleware.AddRequestID, middleware.AccessLog, middleware.ErrorResponder)
	router.MaxMultipartMemory = 4 * config.Upload.MaxFileSize

	// 2. 声明Handler
	tokens := utils.NewTokenManager(config.Jwt)
	auth := middleware.NewAuthenticator(tokens)
	upload := cloud.UploadPolicy{MaxFileSize: config.Upload.MaxFileSize}

	var loginLimit gin.HandlerFunc
	if services.Limiter != nil && config.RateLimit != nil {
		loginLimit = middleware.RateLimit(services.Limiter, config.RateLimit.Limit,
			time.Duration(config.RateLimit.WindowSecond)*time.Second)
	}
	authApiHandler := handler.NewAuthApiHandler(services.Applications, services.Admins, tokens, loginLimit)
	applicationApiHandler := handler.NewApplicationApiHandler(services.Applications, services.Positions,
		services.Storage, upload, auth)
	adminApiHandler := handler.NewAdminApiHandler(services.Applications, services.Positions, services.Storage, auth)
	jobPositionApiHandler := handler.NewJobPositionApiHandler(services.Positions, auth)

	// 3. 配置路径
	api := router.Group("/api")
	authApiHandler.RegisterRoute(api.Group("auth"))
	applicationApiHandler.RegisterRoute(api.Group("applications"))
	adminApiHandler.RegisterRoute(api.Group("admin"))
	jobPositionApiHandler.RegisterRoute(api.Group("job-positions"))

	// 3.1 本地存储的材料以静态文件访问
	if local, ok := services.Storage.(*cloud.LocalStorage); ok {
		router.Static(cloud.LocalURLPrefix, local.Dir())
	}

	router.NoRoute(middleware.NotFound)
	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	conf := cors.DefaultConfig()
	if len(origins) == 0 {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = origins
		conf.AllowCredentials = true
	}
	conf.AddAllowHeaders("Authorization", "X-Requested-With")
	conf.AddExposeHeaders("X-Reqid", "Content-Disposition")
	return cors.New(conf)
}
