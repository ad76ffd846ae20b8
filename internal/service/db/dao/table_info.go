package dao

const (
	// CollectionApplication 存储应聘申请（同时是应聘者账号）的表。
	CollectionApplication = "applications"

	// CollectionJobPosition 存储招聘岗位的表。
	CollectionJobPosition = "job_positions"

	// CollectionAdmin 存储管理员账号的表。
	CollectionAdmin = "admins"
)
