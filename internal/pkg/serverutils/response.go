package serverutils

type BaseResponse struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func SuccessResponse(message string, data interface{}) *BaseResponse {
	return &BaseResponse{
		Success: true,
		Code:    200,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) *BaseResponse {
	return &BaseResponse{
		Success: false,
		Code:    code,
		Message: message,
	}
}

// ValidationErrorResponse carries the per-field messages produced by ValidateRequest.
func ValidationErrorResponse(message string, errs map[string]string) *BaseResponse {
	return &BaseResponse{
		Success: false,
		Code:    400,
		Message: message,
		Errors:  errs,
	}
}
