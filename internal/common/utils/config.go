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

package utils

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	qconfig "github.com/qiniu/x/config"
)

var (
	DefaultConf Config
)

// InitConf 读取配置文件，再用环境变量（含 .env 文件）覆盖其中的敏感项。
func InitConf(configFilePath string) {
	err := qconfig.LoadFile(&DefaultConf, configFilePath)
	if err != nil {
		log.Fatalf("failed to load config file, error %v", err)
	}
	// .env 不存在时忽略。
	_ = godotenv.Load()
	DefaultConf.ApplyEnv()
	DefaultConf.FillDefault()
}

// MongoConfig mongo 数据库配置。
type MongoConfig struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
}

// QiniuKeyPair 七牛APIaccess key/secret key配置。
type QiniuKeyPair struct {
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
}

// QiniuStorageConfig 七牛对象存储服务配置。
type QiniuStorageConfig struct {
	KeyPair QiniuKeyPair `json:"key_pair"`
	// Bucket 上传的文件所在的七牛对象存储bucket。
	Bucket string `json:"bucket"`
	// URLPrefix 上传的文件的下载URL前缀，一般为该bucket对应的默认域名。
	URLPrefix string `json:"url_prefix"`
	// Region 存储区域，z0/z1/z2/na0/as0，默认华南。
	Region   string `json:"region"`
	UseHTTPS bool   `json:"use_https"`
}

// UploadConfig 申请材料上传配置。
type UploadConfig struct {
	// Provider 存储方式，local 表示保存在本地磁盘，qiniu 表示上传到七牛对象存储。
	Provider string `json:"provider"`
	// Dir 本地存储目录，同时以 /uploads 对外提供静态访问。
	Dir string `json:"dir"`
	// MaxFileSize 单个文件大小上限，单位字节。
	MaxFileSize int64               `json:"max_file_size"`
	Qiniu       *QiniuStorageConfig `json:"qiniu"`
	// SweepIntervalMinute 清理孤立文件的周期，为0时不启动清理任务。
	SweepIntervalMinute uint64 `json:"sweep_interval_m"`
	// OrphanTTLHour 未被任何申请引用的文件保留多久后删除。
	OrphanTTLHour int `json:"orphan_ttl_h"`
}

// JwtConfig 登录 token 配置。
type JwtConfig struct {
	Key         string `json:"key"`
	ExpireHours int    `json:"expire_h"`
}

// RedisConfig redis 连接配置。
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// RateLimitConfig 登录接口限流配置。
type RateLimitConfig struct {
	// Provider memory/redis，为空时不限流。
	Provider     string       `json:"provider"`
	Limit        int          `json:"limit"`
	WindowSecond int          `json:"window_s"`
	Redis        *RedisConfig `json:"redis"`
}

// AdminSeedConfig 初始化管理员账号。
type AdminSeedConfig struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Config 后端配置。
type Config struct {
	// debug等级，为1时输出info/warn/error日志，为0除以上外还输出debug日志
	DebugLevel int    `json:"debug_level"`
	ListenAddr string `json:"listen_addr"`
	// AllowOrigins 允许跨域访问的前端地址，为空时允许所有。
	AllowOrigins []string `json:"allow_origins"`
	// TrustedProxies 可信的反向代理地址或网段，只有来自这些地址的请求才采用 X-Forwarded-For 中的客户端IP。
	TrustedProxies []string         `json:"trusted_proxies"`
	Mongo          *MongoConfig     `json:"mongo"`
	Upload         *UploadConfig    `json:"upload"`
	Jwt            JwtConfig        `json:"jwt"`
	RateLimit      *RateLimitConfig `json:"rate_limit"`
	AdminSeed      AdminSeedConfig  `json:"admin_seed"`
}

// ApplyEnv 使用环境变量覆盖配置。
func (c *Config) ApplyEnv() {
	if c.Mongo == nil {
		c.Mongo = &MongoConfig{}
	}
	if v := os.Getenv("MONGODB_URI"); v != "" {
		c.Mongo.URI = v
	}
	if v := os.Getenv("MONGODB_DATABASE"); v != "" {
		c.Mongo.Database = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Jwt.Key = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if _, err := strconv.Atoi(v); err == nil {
			c.ListenAddr = ":" + v
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		if c.RateLimit == nil {
			c.RateLimit = &RateLimitConfig{Provider: "redis"}
		}
		if c.RateLimit.Redis == nil {
			c.RateLimit.Redis = &RedisConfig{}
		}
		c.RateLimit.Redis.Addr = v
	}
}

// FillDefault 补全未配置的字段。
func (c *Config) FillDefault() {
	sample := NewSample()
	if c.ListenAddr == "" {
		c.ListenAddr = sample.ListenAddr
	}
	if c.Mongo == nil {
		c.Mongo = sample.Mongo
	}
	if c.Mongo.URI == "" {
		c.Mongo.URI = sample.Mongo.URI
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = sample.Mongo.Database
	}
	if c.Upload == nil {
		c.Upload = sample.Upload
	}
	if c.Upload.Provider == "" {
		c.Upload.Provider = UploadProviderLocal
	}
	if c.Upload.Dir == "" {
		c.Upload.Dir = sample.Upload.Dir
	}
	if c.Upload.MaxFileSize <= 0 {
		c.Upload.MaxFileSize = sample.Upload.MaxFileSize
	}
	if c.Upload.OrphanTTLHour <= 0 {
		c.Upload.OrphanTTLHour = sample.Upload.OrphanTTLHour
	}
	if c.Jwt.Key == "" {
		c.Jwt.Key = sample.Jwt.Key
	}
	if c.Jwt.ExpireHours <= 0 {
		c.Jwt.ExpireHours = sample.Jwt.ExpireHours
	}
	if c.AdminSeed.Username == "" {
		c.AdminSeed = sample.AdminSeed
	}
	// 登录限流总是开启，未配置的项取样例值。
	if c.RateLimit == nil {
		c.RateLimit = sample.RateLimit
	}
	if c.RateLimit.Provider == "" {
		c.RateLimit.Provider = sample.RateLimit.Provider
	}
	if c.RateLimit.Limit <= 0 {
		c.RateLimit.Limit = sample.RateLimit.Limit
	}
	if c.RateLimit.WindowSecond <= 0 {
		c.RateLimit.WindowSecond = sample.RateLimit.WindowSecond
	}
}

const (
	UploadProviderLocal = "local"
	UploadProviderQiniu = "qiniu"

	RateLimitProviderMemory = "memory"
	RateLimitProviderRedis  = "redis"
)

// NewSample 返回样例配置。
func NewSample() *Config {
	return &Config{
		DebugLevel: 0,
		ListenAddr: ":5000",
		Mongo: &MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "job-portal",
		},
		Upload: &UploadConfig{
			Provider:            UploadProviderLocal,
			Dir:                 "uploads",
			MaxFileSize:         5 << 20,
			SweepIntervalMinute: 60,
			OrphanTTLHour:       24,
		},
		Jwt: JwtConfig{
			Key:         "your-secret-key",
			ExpireHours: 24,
		},
		RateLimit: &RateLimitConfig{
			Provider:     RateLimitProviderMemory,
			Limit:        10,
			WindowSecond: 60,
		},
		AdminSeed: AdminSeedConfig{
			Username: "admin",
			Password: "admin123",
		},
	}
}
