package avatar

import (
	"io"
	"io/ioutil"

	"caster/account"
	"caster/authority"
	"caster/bizerror"
	"caster/client/s3"
	"caster/session"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/fundwit/go-commons/types"
)

var (
	DetailAvatarFunc = DetailAvatar
	CreateAvatarFunc = CreateAvatar
)

func objectKey(profileId types.ID) string {
	return "avatars/" + profileId.String() + ".png"
}

func DetailAvatar(profileId types.ID, sec *session.Session) ([]byte, error) {
	r, err := s3.GetObjectFunc(objectKey(profileId), sec)
	if err != nil {
		if serErr, ok := err.(oss.ServiceError); ok && serErr.Code == "NoSuchKey" {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	defer r.Close()
	return ioutil.ReadAll(r)
}

// CreateAvatar stores the image when the requester may update the profile
// it belongs to.
func CreateAvatar(profileId types.ID, r io.Reader, sec *session.Session) error {
	profile, err := account.ProfileByIDFunc(profileId)
	if err != nil {
		return err
	}
	if sec.Ability.Cannot(authority.ActionUpdate, profile.AuthzSubject()) {
		return bizerror.ErrForbidden
	}

	return s3.PutObjectFunc(objectKey(profileId), r, sec)
}
