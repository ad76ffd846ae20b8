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

package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/solutions/job-portal/internal/common/utils"
	"github.com/solutions/job-portal/internal/service/task"
	"github.com/solutions/job-portal/internal/service/web"

	"github.com/jasonlvhit/gocron"
	"github.com/qiniu/x/log"
)

var (
	configFilePath = "job-portal.conf"
)

func main() {
	flag.StringVar(&configFilePath, "f", configFilePath, "configuration file to run job-portal server")
	flag.Parse()

	utils.InitConf(configFilePath)
	log.SetOutputLevel(utils.DefaultConf.DebugLevel)

	services, err := web.NewServices(&utils.DefaultConf)
	if err != nil {
		log.Fatalf("failed to init services, error %v", err)
	}
	// 启动定时任务
	if interval := utils.DefaultConf.Upload.SweepIntervalMinute; interval > 0 {
		go func() {
			ttl := time.Duration(utils.DefaultConf.Upload.OrphanTTLHour) * time.Hour
			sweepTask := task.NewUploadSweepTask(services.Storage, services.Applications, ttl)
			_ = gocron.Every(interval).Minutes().Do(sweepTask.Start)
			<-gocron.Start()
		}()
	}
	// 启动 gin HTTP server。
	r := web.NewRouter(&utils.DefaultConf, services)
	server := &http.Server{
		Addr:    utils.DefaultConf.ListenAddr,
		Handler: r,
	}

	errch := make(chan error, 1)
	go func() {
		log.Infof("job-portal server listening on %s", server.Addr)
		errch <- server.ListenAndServe()
	}()

	qC := make(chan os.Signal, 1)
	signal.Notify(qC, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-qC:
		log.Info(s.String())
	case err = <-errch:
		log.Error("http server stopped, error", err.Error())
	}
	gocron.Clear()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = server.Shutdown(ctx); err != nil {
		log.Errorf("failed to shutdown http server, error %v", err)
	}
}
