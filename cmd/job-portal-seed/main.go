package main

import (
	"flag"

	"github.com/qiniu/x/log"
	"github.com/qiniu/x/xlog"
	"github.com/solutions/job-portal/internal/common/utils"
	"github.com/solutions/job-portal/internal/protodef/model"
	"github.com/solutions/job-portal/internal/service/db"
)

var (
	configFilePath = "job-portal.conf"
	skipPositions  = false
	backfillOnly   = false
)

// 初始化管理员账号与默认岗位，默认岗位会覆盖已有岗位。
func main() {
	flag.StringVar(&configFilePath, "f", configFilePath, "configuration file of job-portal server")
	flag.BoolVar(&skipPositions, "skip-positions", skipPositions, "only create the admin account")
	flag.BoolVar(&backfillOnly, "backfill", backfillOnly, "fill missing color schemes and icons of existing positions")
	flag.Parse()

	utils.InitConf(configFilePath)
	log.SetOutputLevel(utils.DefaultConf.DebugLevel)
	xl := xlog.New("job-portal-seed")
	conf := utils.DefaultConf

	positions, err := db.NewJobPositionService(*conf.Mongo, xl)
	if err != nil {
		log.Fatalf("failed to connect mongo, error %v", err)
	}
	defer positions.Close()

	if backfillOnly {
		n, err := positions.BackfillStyles(xl)
		if err != nil {
			log.Fatalf("failed to backfill job positions, error %v", err)
		}
		log.Infof("%d job positions backfilled", n)
		return
	}

	admins, err := db.NewAdminService(*conf.Mongo, xl)
	if err != nil {
		log.Fatalf("failed to connect mongo, error %v", err)
	}
	defer admins.Close()
	created, err := admins.EnsureAdmin(xl, conf.AdminSeed.Username, conf.AdminSeed.Password)
	if err != nil {
		log.Fatalf("failed to create admin, error %v", err)
	}
	if created {
		log.Infof("admin %s created", conf.AdminSeed.Username)
	} else {
		log.Infof("admin %s already exists", conf.AdminSeed.Username)
	}

	if skipPositions {
		return
	}
	n, err := positions.ReplaceAll(xl, defaultPositions())
	if err != nil {
		log.Fatalf("failed to seed job positions after %d inserted, error %v", n, err)
	}
	log.Infof("%d job positions seeded", n)
}

func defaultPositions() []model.JobPositionDo {
	return []model.JobPositionDo{
		{
			Title:       "Full Stack",
			Description: "Full-stack developers to build end-to-end web applications using modern technologies like React, Node.js, and MongoDB.",
			Icon:        "bolt",
			ColorScheme: "purple",
			Requirements: []string{
				"3+ years of experience in full-stack development",
				"Proficiency in React.js, Node.js, and MongoDB",
				"Experience with RESTful APIs and database design",
				"Knowledge of version control (Git)",
				"Strong problem-solving skills",
			},
			TotalPositions: 5,
			IsActive:       true,
		},
		{
			Title:       "Web Dev",
			Description: "Frontend web developers specializing in creating responsive and interactive user interfaces.",
			Icon:        "globe",
			ColorScheme: "blue",
			Requirements: []string{
				"2+ years of experience in frontend development",
				"Expert knowledge of HTML5, CSS3, and JavaScript",
				"Experience with React.js or similar frameworks",
				"Understanding of responsive design principles",
				"Portfolio showcasing previous web projects",
			},
			TotalPositions: 8,
			IsActive:       true,
		},
		{
			Title:       "Digital Marketing",
			Description: "Digital marketing specialists to drive online growth and enhance our digital presence.",
			Icon:        "chart-line",
			ColorScheme: "pink",
			Requirements: []string{
				"2+ years of digital marketing experience",
				"Knowledge of SEO, SEM, and social media marketing",
				"Experience with Google Analytics and marketing tools",
				"Content creation and copywriting skills",
				"Understanding of web technologies",
			},
			TotalPositions: 3,
			IsActive:       true,
		},
		{
			Title:       "App Dev",
			Description: "Mobile app developers to create innovative iOS and Android applications.",
			Icon:        "mobile-alt",
			ColorScheme: "green",
			Requirements: []string{
				"3+ years of mobile app development experience",
				"Proficiency in React Native or Flutter",
				"Experience with iOS and Android development",
				"Knowledge of mobile UI/UX best practices",
				"Published apps in App Store or Google Play",
			},
			TotalPositions: 4,
			IsActive:       true,
		},
		{
			Title:       "Cyber Security",
			Description: "Cybersecurity experts to protect our digital infrastructure and client data.",
			Icon:        "shield-alt",
			ColorScheme: "red",
			Requirements: []string{
				"4+ years of cybersecurity experience",
				"Knowledge of security frameworks and compliance",
				"Experience with penetration testing and vulnerability assessment",
				"Certifications like CISSP, CEH, or similar",
				"Understanding of web application security",
			},
			TotalPositions: 2,
			IsActive:       true,
		},
		{
			Title:       "AI & Automation",
			Description: "AI specialists to develop intelligent automation solutions and machine learning applications.",
			Icon:        "robot",
			ColorScheme: "indigo",
			Requirements: []string{
				"3+ years of AI/ML development experience",
				"Proficiency in Python, TensorFlow, or PyTorch",
				"Experience with automation tools and frameworks",
				"Knowledge of data analysis and algorithms",
				"Portfolio of AI/ML projects",
			},
			TotalPositions: 3,
			IsActive:       true,
		},
		{
			Title:       "Sales Executive",
			Description: "Dynamic sales professionals to expand our client base and drive business growth.",
			Icon:        "dollar-sign",
			ColorScheme: "yellow",
			Requirements: []string{
				"2+ years of B2B sales experience",
				"Excellent communication and presentation skills",
				"Understanding of web development and digital services",
				"Proven track record of meeting sales targets",
				"Strong networking and relationship-building abilities",
			},
			TotalPositions: 6,
			IsActive:       true,
		},
	}
}
