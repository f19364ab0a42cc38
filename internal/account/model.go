// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

package account

// Activity is one row of the upstream security activity log.
type Activity struct {
	ID                 int64  `json:"id"`
	Action             string `json:"action"`
	ActionLabel        string `json:"action_label,omitempty"`
	City               string `json:"city"`
	Country            string `json:"country"`
	IPAddress          string `json:"ip_address"`
	Latitude           string `json:"latitude"`
	Location           string `json:"location"`
	Longitude          string `json:"longitude"`
	UserAgent          string `json:"user_agent"`
	UserAgentFormatted string `json:"user_agent_formatted"`
	CreatedAt          string `json:"created_at"`
}

// # Activity Actions

const (
	ActionLogin               = "login"
	ActionLogout              = "logout"
	ActionRegister            = "register"
	ActionForgotPassword      = "forgot_password"
	ActionResetPassword       = "reset_password"
	ActionUpdateProfile       = "update_profile"
	ActionUpdatePassword      = "update_password"
	ActionUpdateEmail         = "update_email"
	ActionUpdatePhone         = "update_phone"
	ActionAddIdentityDocument = "add_identity_document"
)

// actionLabels maps upstream action identifiers to their Vietnamese display
// labels, matching what the activity table renders.
var actionLabels = map[string]string{
	ActionLogin:               "Đăng nhập",
	ActionLogout:              "Đăng xuất",
	ActionRegister:            "Đăng ký",
	ActionForgotPassword:      "Quên mật khẩu",
	ActionResetPassword:       "Đặt lại mật khẩu",
	ActionUpdateProfile:       "Cập nhật thông tin cá nhân",
	ActionUpdatePassword:      "Đổi mật khẩu",
	ActionUpdateEmail:         "Đổi email",
	ActionUpdatePhone:         "Đổi số điện thoại",
	ActionAddIdentityDocument: "Thêm CCCD/Hộ chiếu",
}

// ActionLabel returns the display label for an action. Unknown actions fall
// back to the raw identifier so new upstream events still render.
func ActionLabel(action string) string {
	if label, ok := actionLabels[action]; ok {
		return label
	}
	return action
}
