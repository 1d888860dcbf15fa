package common

import (
	"encoding/hex"
	"fmt"
	"strings"

	vk "github.com/goki/vulkan"
)

// Table and one-line dumps of vulkan structs. They only exist for startup logging.

func TableStringExtensionProps(ext []vk.ExtensionProperties) string {
	strBuilder := strings.Builder{}
	for i := range ext {
		strBuilder.WriteString(fmt.Sprintf(" %-59s%10s\n",
			vk.ToString(ext[i].ExtensionName[:]), vk.Version(ext[i].SpecVersion).String()))
	}
	return strBuilder.String()
}

func TableStringLayerProps(lay []vk.LayerProperties) string {
	strBuilder := strings.Builder{}
	for _, l := range lay {
		strBuilder.WriteString(fmt.Sprintf(
			" %-40sspec: %8s   impl: %8s%50s\n",
			vk.ToString(l.LayerName[:]),
			vk.Version(l.SpecVersion).String(),
			vk.Version(l.ImplementationVersion).String(),
			vk.ToString(l.Description[:]),
		))
	}
	return strBuilder.String()
}

// ToStringPhysicalDeviceTable renders a device with its queue families as a small tree.
func ToStringPhysicalDeviceTable(pdProps vk.PhysicalDeviceProperties, qFamilies []vk.QueueFamilyProperties) string {
	strBuilder := strings.Builder{}
	for i := range qFamilies {
		branch := "| "
		if i == len(qFamilies)-1 {
			branch = "|_"
		}
		strBuilder.WriteString(fmt.Sprintf("%sQfamily[%d] %s\n", branch, i, ToStringQueueFamilyProps(qFamilies[i])))
	}
	return fmt.Sprintf(
		"%s:\n|_%s\n%s",
		vk.ToString(pdProps.DeviceName[:]),
		toStringPhysicalDeviceProps(pdProps),
		strBuilder.String(),
	)
}

func asVendorName(v vk.VendorId) string {
	// There seem to only be a handful of vendors and Ids as stated in:
	// https://www.reddit.com/r/vulkan/comments/4ta9nj/is_there_a_comprehensive_list_of_the_names_and/
	switch v {
	case 0x1002:
		return "AMD"
	case 0x1010:
		return "ImgTec"
	case 0x10DE:
		return "NVIDIA"
	case 0x13B5:
		return "ARM"
	case 0x5143:
		return "Qualcomm"
	case 0x8086:
		return "INTEL"
	case 0x10005:
		return "Mesa"
	default:
		return "unknown"
	}
}

func asDriverVersion(vendor vk.VendorId, raw uint32) string {
	// NVIDIA packs its driver version differently
	if vendor == 0x10DE {
		return fmt.Sprintf("%d.%d.%d.%d", (raw>>22)&0x3ff, (raw>>14)&0x0ff, (raw>>6)&0x0ff, raw&0x003f)
	}
	return vk.Version(raw).String()
}

func toStringPhysicalDeviceProps(pdProps vk.PhysicalDeviceProperties) string {
	return fmt.Sprintf("api: %s, driver: %s, vendorId: %d (%s), deviceId: %d, deviceType: %s, UUID: %v",
		vk.Version(pdProps.ApiVersion).String(),
		asDriverVersion(vk.VendorId(pdProps.VendorID), pdProps.DriverVersion),
		vk.VendorId(pdProps.VendorID),
		asVendorName(vk.VendorId(pdProps.VendorID)),
		pdProps.DeviceID,
		ToStringDeviceType(pdProps.DeviceType),
		hex.EncodeToString(pdProps.PipelineCacheUUID[:]),
	)
}

func ToStringDeviceType(dt vk.PhysicalDeviceType) string {
	switch dt {
	case vk.PhysicalDeviceTypeOther:
		return "other"
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated Gpu"
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete Gpu"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual Gpu"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	default:
		return "unknown"
	}
}

func ToStringPhysicalDeviceMemProps(pdMemProps vk.PhysicalDeviceMemoryProperties) string {
	b := strings.Builder{}
	for i := uint32(0); i < pdMemProps.MemoryTypeCount; i++ {
		mt := pdMemProps.MemoryTypes[i]
		b.WriteString(fmt.Sprintf(" type %d: Flags:%032b, HeapIdx:%d\n", i, mt.PropertyFlags, mt.HeapIndex))
	}
	for i := uint32(0); i < pdMemProps.MemoryHeapCount; i++ {
		mh := pdMemProps.MemoryHeaps[i]
		b.WriteString(fmt.Sprintf(" heap %d: Size:%d, Flags:%d\n", i, mh.Size, mh.Flags))
	}
	return b.String()
}

func ToStringMemoryRequirements(mr vk.MemoryRequirements) string {
	return fmt.Sprintf("MemoryRequirements(Size:%d Byte, Alignment:%d Byte, MemTypeBits:[%032b])", mr.Size, mr.Alignment, mr.MemoryTypeBits)
}

func ToStringQueueFamilyProps(q vk.QueueFamilyProperties) string {
	return fmt.Sprintf(
		"Count: %2d, Valid ts bits: %d, ImageGranularity: (%d,%d,%d), Flags: %v",
		q.QueueCount,
		q.TimestampValidBits,
		q.MinImageTransferGranularity.Width,
		q.MinImageTransferGranularity.Height,
		q.MinImageTransferGranularity.Depth,
		ToStringQueueFlags(q.QueueFlags),
	)
}

func ToStringQueueFlags(bits vk.QueueFlags) []string {
	var properties []string
	flags := vk.QueueFlagBits(bits)
	if flags&vk.QueueGraphicsBit > 0 {
		properties = append(properties, "VK_QUEUE_GRAPHICS_BIT")
	}
	if flags&vk.QueueComputeBit > 0 {
		properties = append(properties, "VK_QUEUE_COMPUTE_BIT")
	}
	if flags&vk.QueueTransferBit > 0 {
		properties = append(properties, "VK_QUEUE_TRANSFER_BIT")
	}
	if flags&vk.QueueSparseBindingBit > 0 {
		properties = append(properties, "VK_QUEUE_SPARSE_BINDING_BIT")
	}
	if flags&vk.QueueProtectedBit > 0 {
		properties = append(properties, "VK_QUEUE_PROTECTED_BIT")
	}
	return properties
}
