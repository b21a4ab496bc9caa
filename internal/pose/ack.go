package pose

// Acknowledgement lines, in the peer operator's language.
const (
	AckSaved              = "保存成功"
	AckWrongArity         = "输入数据错误: 需要7个参数(yaw,pitch,roll,lx,ly,rx,ry)\n请重新输入"
	AckNotNumeric         = "输入数据错误: 必须输入7个有效的数字\n请重新输入"
	AckAngleOutOfRange    = "输入数据错误: yaw/pitch/roll必须介于-180和180之间\n请重新输入"
	AckCoordinateOutRange = "输入数据错误: lx/ly/rx/ry必须介于-1000和1000之间\n请重新输入"
)

// Outcome is the metric label for a Validate result.
func Outcome(err error) string {
	if err == nil {
		return "accepted"
	}
	if kind := KindOf(err); kind != "" {
		return string(kind)
	}
	return "unknown"
}

// Acknowledgement returns the status line owed to the peer for a Validate result.
func Acknowledgement(err error) string {
	if err == nil {
		return AckSaved
	}
	switch KindOf(err) {
	case KindAngleOutOfRange:
		return AckAngleOutOfRange
	case KindCoordinateOutOfRange:
		return AckCoordinateOutRange
	case KindWrongArity, KindTooManyFields:
		return AckWrongArity
	default:
		return AckNotNumeric
	}
}
