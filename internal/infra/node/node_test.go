package node_test

import (
	"loanportal-server/internal/infra/node"
	"net"
	"strings"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Node", func() {
	ginkgo.Context("GetNodeInfo", func() {
		ginkgo.It("should describe the running instance", func() {
			info := node.GetNodeInfo()

			gomega.Expect(info.ID).To(gomega.HaveLen(36))
			gomega.Expect(info.Hostname).NotTo(gomega.BeEmpty())
			gomega.Expect(net.ParseIP(info.IPAddress)).NotTo(gomega.BeNil())
			gomega.Expect(info.Version).To(gomega.Equal(node.Version))
			gomega.Expect(info.CommitHash).To(gomega.Equal(node.CommitHash))
		})

		ginkgo.It("should keep the same identity for the process lifetime", func() {
			gomega.Expect(node.GetNodeInfo()).To(gomega.BeIdenticalTo(node.GetNodeInfo()))
		})
	})

	ginkgo.Context("ConsumerGroup", func() {
		ginkgo.It("should suffix the base group with the node id", func() {
			info := node.GetNodeInfo()
			group := info.ConsumerGroup("loanportal-server")

			gomega.Expect(group).To(gomega.HavePrefix("loanportal-server-"))
			gomega.Expect(strings.TrimPrefix(group, "loanportal-server-")).To(gomega.Equal(info.ID))
		})
	})
})
