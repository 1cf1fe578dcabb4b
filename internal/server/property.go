package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	propertydomain "github.com/maisonlabs/courtier/internal/property/domain"
	"github.com/maisonlabs/courtier/pkg/db/pagination"
	"go.uber.org/zap"
)

type createPropertyRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	PostalCode  string  `json:"postal_code"`
	Country     string  `json:"country"`
	Price       float64 `json:"price"`
	Surface     float64 `json:"surface"`
	Rooms       int     `json:"rooms"`
	Bedrooms    int     `json:"bedrooms"`
	Bathrooms   int     `json:"bathrooms"`
	Floor       int     `json:"floor"`
	HasElevator bool    `json:"has_elevator"`
	HasParking  bool    `json:"has_parking"`
	HasBalcony  bool    `json:"has_balcony"`
	HasGarden   bool    `json:"has_garden"`
	YearBuilt   int     `json:"year_built"`
	EnergyClass string  `json:"energy_class"`
	ClientID    string  `json:"client_id"`
}

func (s *Server) CreateProperty(c *gin.Context) {
	identity, _ := identityFrom(c)

	var req createPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	clientID, err := parseOptionalSnowflakeID(req.ClientID)
	if err != nil {
		AbortWithError(c, newValidationError("client_id", "invalid_client_id", "invalid client_id"))
		return
	}

	resp, err := s.propertySvc.Create(c.Request.Context(), identity, propertydomain.CreatePropertyRequest{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Status:      req.Status,
		Address:     req.Address,
		City:        req.City,
		PostalCode:  req.PostalCode,
		Country:     req.Country,
		Price:       req.Price,
		Surface:     req.Surface,
		Rooms:       req.Rooms,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Floor:       req.Floor,
		HasElevator: req.HasElevator,
		HasParking:  req.HasParking,
		HasBalcony:  req.HasBalcony,
		HasGarden:   req.HasGarden,
		YearBuilt:   req.YearBuilt,
		EnergyClass: req.EnergyClass,
		ClientID:    clientID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListProperties(c *gin.Context) {
	identity, _ := identityFrom(c)

	var query struct {
		pagination.Pagination
		Status   string `form:"status"`
		Type     string `form:"type"`
		City     string `form:"city"`
		Search   string `form:"search"`
		MinPrice string `form:"min_price"`
		MaxPrice string `form:"max_price"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	minPrice, err := parseOptionalFloat(query.MinPrice)
	if err != nil {
		AbortWithError(c, newValidationError("min_price", "invalid_min_price", "invalid min_price"))
		return
	}
	maxPrice, err := parseOptionalFloat(query.MaxPrice)
	if err != nil {
		AbortWithError(c, newValidationError("max_price", "invalid_max_price", "invalid max_price"))
		return
	}

	resp, err := s.propertySvc.List(c.Request.Context(), identity, propertydomain.ListPropertyRequest{
		Pagination: query.Pagination,
		Status:     strings.ToUpper(strings.TrimSpace(query.Status)),
		Type:       strings.ToUpper(strings.TrimSpace(query.Type)),
		City:       strings.TrimSpace(query.City),
		Search:     strings.TrimSpace(query.Search),
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPropertyByID(c *gin.Context) {
	identity, _ := identityFrom(c)
	resp, err := s.propertySvc.GetByID(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updatePropertyRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Type        *string  `json:"type"`
	Status      *string  `json:"status"`
	Address     *string  `json:"address"`
	City        *string  `json:"city"`
	PostalCode  *string  `json:"postal_code"`
	Country     *string  `json:"country"`
	Price       *float64 `json:"price"`
	Surface     *float64 `json:"surface"`
	Rooms       *int     `json:"rooms"`
	Bedrooms    *int     `json:"bedrooms"`
	Bathrooms   *int     `json:"bathrooms"`
	Floor       *int     `json:"floor"`
	HasElevator *bool    `json:"has_elevator"`
	HasParking  *bool    `json:"has_parking"`
	HasBalcony  *bool    `json:"has_balcony"`
	HasGarden   *bool    `json:"has_garden"`
	YearBuilt   *int     `json:"year_built"`
	EnergyClass *string  `json:"energy_class"`
	ClientID    *string  `json:"client_id"`
}

func (s *Server) UpdateProperty(c *gin.Context) {
	identity, _ := identityFrom(c)

	var req updatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var clientID *snowflake.ID
	if req.ClientID != nil {
		parsed, err := parseOptionalSnowflakeID(*req.ClientID)
		if err != nil {
			AbortWithError(c, newValidationError("client_id", "invalid_client_id", "invalid client_id"))
			return
		}
		clientID = parsed
	}

	resp, err := s.propertySvc.Update(c.Request.Context(), identity, propertydomain.UpdatePropertyRequest{
		ID:          c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Status:      req.Status,
		Address:     req.Address,
		City:        req.City,
		PostalCode:  req.PostalCode,
		Country:     req.Country,
		Price:       req.Price,
		Surface:     req.Surface,
		Rooms:       req.Rooms,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Floor:       req.Floor,
		HasElevator: req.HasElevator,
		HasParking:  req.HasParking,
		HasBalcony:  req.HasBalcony,
		HasGarden:   req.HasGarden,
		YearBuilt:   req.YearBuilt,
		EnergyClass: req.EnergyClass,
		ClientID:    clientID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProperty(c *gin.Context) {
	identity, _ := identityFrom(c)
	if err := s.propertySvc.Delete(c.Request.Context(), identity, c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

// AddPropertyPhoto accepts a multipart upload, stores the bytes on disk and
// attaches the photo record.
func (s *Server) AddPropertyPhoto(c *gin.Context) {
	identity, _ := identityFrom(c)

	file, err := c.FormFile("photo")
	if err != nil {
		AbortWithError(c, newValidationError("photo", "invalid_photo", "photo file is required"))
		return
	}

	src, err := file.Open()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer src.Close()

	filename, path, _, err := s.store.Save(identity.AgencyID, file.Filename, src)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	isMain := strings.EqualFold(strings.TrimSpace(c.PostForm("is_main")), "true")
	resp, err := s.propertySvc.AddPhoto(c.Request.Context(), identity, propertydomain.AddPhotoRequest{
		PropertyID: c.Param("id"),
		URL:        "/uploads/" + path,
		Filename:   filename,
		IsMain:     isMain,
	})
	if err != nil {
		if removeErr := s.store.Remove(path); removeErr != nil {
			s.log.Warn("orphan photo upload", zap.String("path", path), zap.Error(removeErr))
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) SetMainPropertyPhoto(c *gin.Context) {
	identity, _ := identityFrom(c)
	err := s.propertySvc.SetMainPhoto(c.Request.Context(), identity, c.Param("id"), c.Param("photoId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"main": true}})
}

func (s *Server) DeletePropertyPhoto(c *gin.Context) {
	identity, _ := identityFrom(c)
	err := s.propertySvc.DeletePhoto(c.Request.Context(), identity, c.Param("id"), c.Param("photoId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func isPropertyValidationError(err error) bool {
	switch err {
	case propertydomain.ErrInvalidTitle,
		propertydomain.ErrInvalidType,
		propertydomain.ErrInvalidStatus,
		propertydomain.ErrInvalidPrice,
		propertydomain.ErrInvalidID:
		return true
	default:
		return false
	}
}
