package authorization

import (
	"context"
	_ "embed"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/maisonlabs/courtier/internal/tenant"
	userdomain "github.com/maisonlabs/courtier/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:embed model.conf
var modelText string

const (
	ObjectAgency        = "agency"
	ObjectUser          = "user"
	ObjectClient        = "client"
	ObjectProperty      = "property"
	ObjectContract      = "contract"
	ObjectMandate       = "mandate"
	ObjectOffer         = "offer"
	ObjectPayment       = "payment"
	ObjectTask          = "task"
	ObjectAppointment   = "appointment"
	ObjectCommunication = "communication"
	ObjectDocument      = "document"
	ObjectSavedSearch   = "saved_search"
	ObjectCMS           = "cms"
	ObjectAnalytics     = "analytics"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionManage = "manage"
)

type Service interface {
	Authorize(ctx context.Context, identity tenant.Identity, object, action string) error
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer builds the enforcer from the embedded model and the static
// capability table. The role set is closed; a role missing from the table has
// no capabilities at all.
func NewEnforcer() (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, identity tenant.Identity, object, action string) error {
	_ = ctx

	if identity.SuperAdmin {
		return nil
	}

	role := strings.ToUpper(strings.TrimSpace(identity.Role))
	if !userdomain.ValidRole(role) {
		return tenant.ErrForbidden
	}

	allowed, err := s.enforcer.Enforce(roleSubject(role), strings.TrimSpace(object), strings.TrimSpace(action))
	if err != nil {
		return err
	}
	if !allowed {
		return tenant.ErrForbidden
	}
	return nil
}

func roleSubject(role string) string {
	return "role:" + strings.ToLower(role)
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Secretary: read everything in scope, manage the office workload.
		{"role:secretary", ObjectAgency, ActionView},
		{"role:secretary", ObjectUser, ActionView},
		{"role:secretary", ObjectClient, ActionView},
		{"role:secretary", ObjectProperty, ActionView},
		{"role:secretary", ObjectContract, ActionView},
		{"role:secretary", ObjectMandate, ActionView},
		{"role:secretary", ObjectOffer, ActionView},
		{"role:secretary", ObjectPayment, ActionView},
		{"role:secretary", ObjectDocument, ActionView},
		{"role:secretary", ObjectSavedSearch, ActionView},
		{"role:secretary", ObjectCMS, ActionView},
		{"role:secretary", ObjectAnalytics, ActionView},
		{"role:secretary", ObjectTask, ActionView},
		{"role:secretary", ObjectTask, ActionCreate},
		{"role:secretary", ObjectTask, ActionUpdate},
		{"role:secretary", ObjectTask, ActionDelete},
		{"role:secretary", ObjectAppointment, ActionView},
		{"role:secretary", ObjectAppointment, ActionCreate},
		{"role:secretary", ObjectAppointment, ActionUpdate},
		{"role:secretary", ObjectAppointment, ActionDelete},
		{"role:secretary", ObjectCommunication, ActionView},
		{"role:secretary", ObjectCommunication, ActionCreate},
		{"role:secretary", ObjectCommunication, ActionUpdate},

		// Agent: everything a secretary can, plus the deal pipeline.
		{"role:agent", ObjectClient, ActionCreate},
		{"role:agent", ObjectClient, ActionUpdate},
		{"role:agent", ObjectClient, ActionDelete},
		{"role:agent", ObjectProperty, ActionCreate},
		{"role:agent", ObjectProperty, ActionUpdate},
		{"role:agent", ObjectProperty, ActionDelete},
		{"role:agent", ObjectContract, ActionCreate},
		{"role:agent", ObjectContract, ActionUpdate},
		{"role:agent", ObjectMandate, ActionCreate},
		{"role:agent", ObjectMandate, ActionUpdate},
		{"role:agent", ObjectOffer, ActionCreate},
		{"role:agent", ObjectOffer, ActionUpdate},
		{"role:agent", ObjectPayment, ActionCreate},
		{"role:agent", ObjectPayment, ActionUpdate},
		{"role:agent", ObjectDocument, ActionCreate},
		{"role:agent", ObjectDocument, ActionUpdate},
		{"role:agent", ObjectDocument, ActionDelete},
		{"role:agent", ObjectSavedSearch, ActionCreate},
		{"role:agent", ObjectSavedSearch, ActionUpdate},
		{"role:agent", ObjectSavedSearch, ActionDelete},

		// Manager: adds people management, terminal deal states and CMS.
		{"role:manager", ObjectUser, ActionManage},
		{"role:manager", ObjectAgency, ActionManage},
		{"role:manager", ObjectContract, ActionDelete},
		{"role:manager", ObjectMandate, ActionDelete},
		{"role:manager", ObjectOffer, ActionDelete},
		{"role:manager", ObjectPayment, ActionDelete},
		{"role:manager", ObjectCommunication, ActionDelete},
		{"role:manager", ObjectCMS, ActionManage},
	}

	groupings := [][]string{
		{"role:agent", "role:secretary"},
		{"role:manager", "role:agent"},
		{"role:admin", "role:manager"},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	for _, grouping := range groupings {
		if _, err := enforcer.AddGroupingPolicy(grouping[0], grouping[1]); err != nil {
			return err
		}
	}
	return nil
}
